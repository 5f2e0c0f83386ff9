package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/ulpack/internal/database"
	"github.com/dukerupert/ulpack/internal/sampledata"
	"github.com/dukerupert/ulpack/internal/server"
	"github.com/dukerupert/ulpack/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.SeedSampleData {
		_, err := sampledata.Seed(ctx, store.NewPackingListStore(db), store.NewGearItemStore(db), logger.With("component", "sampledata"))
		if err != nil {
			return err
		}
	}

	srv, err := server.New(db, server.Config{
		AllowedOrigins:   cfg.AllowedOrigins,
		SharedRateLimit:  cfg.SharedRateLimit,
		SharedRateWindow: cfg.SharedRateWindow,
	}, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ulpack listening", "addr", cfg.Addr, "db_path", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "websocket_clients", srv.Hub().ClientCount())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

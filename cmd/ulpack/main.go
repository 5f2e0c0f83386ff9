// Package main provides the ulpack server and maintenance CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dukerupert/ulpack/internal/config"
	"github.com/dukerupert/ulpack/internal/logging"
)

var (
	// configFile is set by the --config flag.
	configFile string

	cfg    config.Config
	logger *slog.Logger
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ulpack",
	Short: "Ultralight backpacking packing lists",
	Long: `ulpack manages packing lists for ultralight backpacking trips. It
tracks gear weight by kind, shares read-only lists by token and serves
both a JSON API and server-rendered pages.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (YAML, TOML or JSON)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

// loadConfig resolves configuration (flag file, ULPACK_* env, defaults)
// and installs the process logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	v := config.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	var err error
	cfg, err = config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return nil
}

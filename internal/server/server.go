package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/ulpack/internal/handler"
	"github.com/dukerupert/ulpack/internal/middleware"
	"github.com/dukerupert/ulpack/internal/store"
	ws "github.com/dukerupert/ulpack/internal/websocket"
	"github.com/dukerupert/ulpack/web"
)

type Config struct {
	AllowedOrigins   []string
	SharedRateLimit  int
	SharedRateWindow time.Duration
}

type Server struct {
	db              *sql.DB
	cfg             Config
	hub             *ws.Hub
	packingListH    *handler.PackingListHandler
	gearItemH       *handler.GearItemHandler
	templateHandler *handler.TemplateHandler
	rateLimiter     *middleware.RateLimiter
	registry        *prometheus.Registry
	metrics         *middleware.Metrics
	static          fs.FS
	logger          *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.SharedRateLimit <= 0 {
		cfg.SharedRateLimit = 60
	}
	if cfg.SharedRateWindow <= 0 {
		cfg.SharedRateWindow = time.Minute
	}

	hub := ws.NewHub(logger.With("component", "websocket"))

	listStore := store.NewPackingListStore(db)
	itemStore := store.NewGearItemStore(db)

	templates, err := handler.ParseTemplates(web.FS)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		db:              db,
		cfg:             cfg,
		hub:             hub,
		packingListH:    handler.NewPackingListHandler(listStore, itemStore, hub, logger.With("component", "packing_list")),
		gearItemH:       handler.NewGearItemHandler(listStore, itemStore, hub, logger.With("component", "gear_item")),
		templateHandler: handler.NewTemplateHandler(listStore, itemStore, hub, templates, logger.With("component", "template")),
		rateLimiter:     middleware.NewRateLimiter(cfg.SharedRateLimit, cfg.SharedRateWindow),
		registry:        registry,
		metrics:         middleware.NewMetrics(registry),
		static:          static,
		logger:          logger,
	}, nil
}

// Hub returns the websocket hub for change notifications.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.cfg.AllowedOrigins, s.logger.With("component", "websocket")))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(s.static)))

	s.registerAPIRoutes(mux)
	s.registerPageRoutes(mux)

	var h http.Handler = mux
	h = s.metrics.Middleware(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	h = middleware.CORS(s.cfg.AllowedOrigins)(h)
	return h
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	lists := s.packingListH
	items := s.gearItemH

	mux.HandleFunc("GET /api/v1/lists", lists.List)
	mux.HandleFunc("POST /api/v1/lists", lists.Create)
	mux.HandleFunc("GET /api/v1/lists/{id}", lists.Get)
	mux.HandleFunc("PATCH /api/v1/lists/{id}", lists.Update)
	mux.HandleFunc("DELETE /api/v1/lists/{id}", lists.Delete)
	mux.HandleFunc("PATCH /api/v1/lists/{id}/unit", lists.SetUnit)
	mux.HandleFunc("PATCH /api/v1/lists/{id}/share", lists.SetShared)
	mux.HandleFunc("POST /api/v1/lists/{id}/share/regenerate", lists.RegenerateShare)

	mux.HandleFunc("POST /api/v1/lists/{id}/items", items.Create)
	mux.HandleFunc("PUT /api/v1/lists/{id}/items/order", items.Reorder)
	mux.HandleFunc("PATCH /api/v1/lists/{id}/items/{item_id}", items.Update)
	mux.HandleFunc("DELETE /api/v1/lists/{id}/items/{item_id}", items.Delete)

	mux.HandleFunc("GET /api/v1/gear-items", items.ListAll)
	mux.HandleFunc("POST /api/v1/gear-items", items.CreateInventory)

	mux.Handle("GET /api/v1/shared/{token}", s.sharedRateLimit(handler.APITooManyRequests)(http.HandlerFunc(lists.Shared)))

	mux.HandleFunc("/api/", handler.APINotFound)
}

func (s *Server) registerPageRoutes(mux *http.ServeMux) {
	pages := s.templateHandler

	mux.HandleFunc("GET /{$}", pages.Index)
	mux.HandleFunc("POST /lists", pages.CreateList)
	mux.HandleFunc("GET /lists/{id}", pages.ShowList)
	mux.HandleFunc("POST /lists/{id}/items", pages.CreateItem)
	mux.HandleFunc("POST /lists/{id}/items/{item_id}", pages.UpdateItem)
	mux.HandleFunc("POST /lists/{id}/items/{item_id}/delete", pages.DeleteItem)
	mux.HandleFunc("POST /lists/{id}/unit", pages.SetUnit)
	mux.HandleFunc("POST /lists/{id}/share/regenerate", pages.RegenerateShare)
	mux.HandleFunc("POST /lists/{id}/delete", pages.DeleteList)
	mux.HandleFunc("GET /gear", pages.Gear)
	mux.HandleFunc("POST /gear", pages.CreateGear)

	mux.Handle("GET /s/{token}", s.sharedRateLimit(nil)(http.HandlerFunc(pages.Shared)))
}

// sharedRateLimit throttles public share-token lookups per client IP so
// tokens cannot be enumerated cheaply.
func (s *Server) sharedRateLimit(onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP, onLimit)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

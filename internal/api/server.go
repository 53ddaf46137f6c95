package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docmark/internal/config"
	"github.com/dgallion1/docmark/internal/layout"
	"github.com/dgallion1/docmark/internal/page"
	"github.com/dgallion1/docmark/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docmark.
type Server struct {
	router chi.Router
	store  *page.Store
	stats  *stats.Collector
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. collector may be nil.
func NewServer(store *page.Store, collector *stats.Collector, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store: store,
		stats: collector,
		log:   log,
		cfg:   cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	var rec RequestRecorder
	if s.stats != nil {
		rec = s.stats
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log, rec))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.stats != nil {
		r.Handle("/metrics", s.stats.Handler())
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocmarkAPIKey, s.log))

		r.Post("/api/pages", s.handleCreatePage)
		r.Get("/api/pages", s.handleListPages)
		r.Route("/api/pages/{pageID}", func(r chi.Router) {
			r.Get("/", s.handleGetPage)
			r.Delete("/", s.handleDeletePage)
			r.Get("/html", s.handlePageHTML)
			r.Get("/markdown", s.handlePageMarkdown)
			r.Post("/actions", s.handleAction)
			r.Post("/events", s.handleEvent)
			r.Post("/scroll", s.handleScroll)
		})

		r.Get("/api/stats/commands", s.handleCommandStats)
	})

	s.router = r
}

// pageOptions builds the engine options for new pages.
func (s *Server) pageOptions() page.Options {
	opts := page.Options{
		Palette:           s.cfg.Palette,
		MaxHighlightNodes: s.cfg.MaxHighlightNodes,
		BlinkInterval:     s.cfg.BlinkInterval,
		Metrics: layout.Metrics{
			ViewportWidth: s.cfg.ViewportWidth,
			CharWidth:     s.cfg.CharWidth,
			LineHeight:    s.cfg.LineHeight,
		},
	}
	if s.stats != nil {
		opts.Recorder = s.stats
	}
	return opts
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"pages":  s.store.Len(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// storeError maps page store errors to HTTP statuses.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, page.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, page.ErrStoreFull):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

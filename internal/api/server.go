package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nishantmodak/ghost-admin/internal/config"
	"github.com/nishantmodak/ghost-admin/internal/history"
	"github.com/nishantmodak/ghost-admin/internal/pipeline"
)

// RunReader reads the run journal. history.Store implements it.
type RunReader interface {
	List(ctx context.Context, limit int) ([]history.Run, error)
	Get(ctx context.Context, id string) (*history.Run, error)
}

// Server is the HTTP API server for the bulk editor.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	runs         RunReader
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. runs may be nil when
// the journal is disabled.
func NewServer(orch *pipeline.Orchestrator, runs RunReader, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		runs:         runs,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/links/scan", s.handleLinksScan)
		r.Post("/api/links/update", s.handleLinksUpdate)

		r.Get("/api/images/scan", s.handleImagesScan)
		r.Post("/api/images/preview", s.handleImagesPreview)
		r.Post("/api/images/update", s.handleImagesUpdate)

		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/runs", s.handleListRuns)
		r.Get("/api/runs/{runID}", s.handleGetRun)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

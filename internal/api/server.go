package api

import (
	"log/slog"
	"net/http"

	"docrank/internal/config"
	"docrank/internal/embedding"
	"docrank/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API for submitting and retrieving collection
// ranking runs.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	embedStats   *embedding.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, embedStats *embedding.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		embedStats:   embedStats,
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
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/collections", s.handleSubmitCollection)
		r.Get("/api/collections/{jobID}/status", s.handleCollectionStatus)
		r.Get("/api/collections/{jobID}/result", s.handleCollectionResult)
		r.Get("/api/stats/embedding", s.handleEmbeddingStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

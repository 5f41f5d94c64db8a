// Package server provides the HTTP server setup and wiring.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pendergraft/mintfactory/internal/auth"
	"github.com/pendergraft/mintfactory/internal/chains"
	"github.com/pendergraft/mintfactory/internal/config"
	deploymentsDomain "github.com/pendergraft/mintfactory/internal/deployments/domain"
	deploymentsTransport "github.com/pendergraft/mintfactory/internal/deployments/transport"
	"github.com/pendergraft/mintfactory/internal/middleware/logging"
	"github.com/pendergraft/mintfactory/internal/middleware/ratelimit"
	"github.com/pendergraft/mintfactory/internal/observability/metrics"
	"github.com/pendergraft/mintfactory/internal/storage"
)

// Server is the deployment records HTTP server
type Server struct {
	cfg    *config.Config
	store  storage.Store
	logger *slog.Logger
	router *chi.Mux

	deploymentsSvc deploymentsTransport.Service
	keys           auth.Validator
}

// New creates a new server
func New(cfg *config.Config, store storage.Store, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		router: chi.NewRouter(),
	}

	deployImpl := deploymentsDomain.NewService(store, chains.DefaultRegistry())
	s.deploymentsSvc = deploymentsDomain.LoggingMiddleware(logger)(deployImpl)

	var keys auth.Chain
	if static := auth.NewStaticKeys(cfg.Auth.APIKeys); static.Len() > 0 {
		keys = append(keys, static)
	}
	s.keys = append(keys, store)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	// Client IP must be resolved before rate limiting and logging read it.
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RequestSize(int64(s.cfg.Server.MaxBodySizeKB) << 10))

	s.router.Use(ratelimit.Middleware(ratelimit.Config{
		Enabled:        s.cfg.RateLimit.Enabled,
		RequestsPerMin: s.cfg.RateLimit.RequestsPerMin,
		BurstSize:      s.cfg.RateLimit.BurstSize,
		CleanupMinutes: s.cfg.RateLimit.CleanupMinutes,
	}))

	s.router.Use(logging.Middleware(s.logger))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(time.Duration(s.cfg.Server.RequestTimeout) * time.Second))
	}
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/readyz", s.handleReady)
	if metrics.Enabled() {
		s.router.Handle("/metrics", metrics.Handler())
	}

	deploymentsHandler := deploymentsTransport.NewHandler(s.deploymentsSvc)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/chains", s.handleChains)

		r.Route("/deployments", func(r chi.Router) {
			deploymentsHandler.RegisterReadRoutes(r)

			r.Group(func(r chi.Router) {
				if s.cfg.Auth.Enabled() {
					r.Use(auth.Middleware(s.keys, writeError))
				}
				deploymentsHandler.RegisterWriteRoutes(r)
			})
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports whether the store is reachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", "storage unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleChains lists the chains records can be filed under.
func (s *Server) handleChains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": chains.DefaultRegistry().List()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

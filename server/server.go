// Package server provides HTTP server management and lifecycle handling for the pharmacology API.
// It includes server setup, middleware configuration, route management, and graceful shutdown
// capabilities with proper error handling and logging.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giygas/pharmacology-api/config"
	"github.com/giygas/pharmacology-api/data"
	"github.com/giygas/pharmacology-api/handlers"
	"github.com/giygas/pharmacology-api/health"
	"github.com/giygas/pharmacology-api/interfaces"
	"github.com/giygas/pharmacology-api/logging"
	"github.com/giygas/pharmacology-api/metrics"
	"github.com/giygas/pharmacology-api/validation"
)

const profilingAddr = "localhost:6060"

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	profiler      *http.Server
	router        chi.Router
	dataContainer *data.DataContainer
	httpHandler   interfaces.HTTPHandler
	rateLimiter   *RateLimiter
	config        *config.Config
	cancel        context.CancelFunc
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, dataContainer *data.DataContainer) *Server {
	router := chi.NewRouter()
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := health.NewHealthChecker(dataContainer, cfg.AuditInterval)
	httpHandler := handlers.NewHTTPHandler(dataContainer, validation.NewDataValidator(), healthChecker)

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:        router,
		dataContainer: dataContainer,
		httpHandler:   httpHandler,
		rateLimiter:   NewRateLimiter(rateLimitRate, rateLimitCapacity),
		config:        cfg,
		cancel:        cancel,
	}

	server.rateLimiter.StartCleanup(ctx, 30*time.Minute)
	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// requestLogger returns the service logger, or the default one before InitLogger ran
func requestLogger() *slog.Logger {
	if logging.DefaultLoggingService != nil && logging.DefaultLoggingService.Logger != nil {
		return logging.DefaultLoggingService.Logger
	}
	return slog.Default()
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(BlockDirectAccessMiddleware(s.config.Env != config.EnvProduction)) // Before RealIPMiddleware to see the original RemoteAddr
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(requestLogger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Rate", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(metrics.Metrics)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(s.rateLimiter.Handler)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.httpHandler

	s.router.Get("/health", h.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/medications", h.SearchMedications)
		r.Get("/medications/{id}", h.GetMedication)
		r.Post("/patients/medications/resolve", h.ResolvePatientMedications)

		r.Get("/targets", h.SearchTargets)
		r.Get("/targets/medications", h.MedicationsForRegion)
		r.Get("/pharmacokinetics", h.SearchPharmacokinetics)

		r.Get("/interactions", h.GetInteractions)
		r.Get("/interactions/search", h.SearchInteractions)
		r.Get("/interactions/{id}", h.GetInteraction)

		r.Get("/drug-classes", h.SearchDrugClasses)
		r.Get("/drug-classes/{id}/mechanism", h.GetMechanism)
		r.Get("/mechanisms", h.SearchMechanisms)
		r.Get("/mechanisms/{id}", h.GetMechanismByID)
		r.Get("/side-effects", h.SearchSideEffects)
		r.Get("/side-effects/{id}", h.GetSideEffect)

		r.Get("/combinations", h.SearchCombinations)
		r.Get("/combinations/{id}", h.GetCombination)

		r.Get("/stats", h.GetStats)
		r.Get("/coverage", h.GetCoverage)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", r.Method))
	})
}

// Router exposes the configured router for tests and embedding
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	if s.config.Env == config.EnvDevelopment {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")
	s.cancel()

	if s.profiler != nil {
		_ = s.profiler.Close()
	}

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	s.profiler = &http.Server{Addr: profilingAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logging.Info("Profiling server started", "url", "http://"+profilingAddr+"/debug/pprof/")
		if err := s.profiler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}

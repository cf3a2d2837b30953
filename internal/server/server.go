// Package server provides the HTTP server and routing for the advisor API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-advisor/internal/di"
	advisorhandlers "github.com/aristath/portfolio-advisor/internal/modules/advisor/handlers"
	backtesthandlers "github.com/aristath/portfolio-advisor/internal/modules/backtest/handlers"
	markethandlers "github.com/aristath/portfolio-advisor/internal/modules/market/handlers"
	optimizationhandlers "github.com/aristath/portfolio-advisor/internal/modules/optimization/handlers"
	riskhandlers "github.com/aristath/portfolio-advisor/internal/modules/risk/handlers"
	universehandlers "github.com/aristath/portfolio-advisor/internal/modules/universe/handlers"
)

// APIPrefix is the mount point of the versioned API
const APIPrefix = "/api/v1"

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	Container   *di.Container
	CORSOrigins []string
	Port        int
	DevMode     bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	container      *di.Container
	systemHandlers *SystemHandlers
	port           int
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		container: cfg.Container,
		port:      cfg.Port,
	}
	s.systemHandlers = NewSystemHandlers(cfg.Container, cfg.Log)

	s.setupMiddleware(cfg.DevMode, cfg.CORSOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // explanations wait on the language model
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool, origins []string) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	c := s.container

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/system", func(r chi.Router) {
		r.Get("/status", s.systemHandlers.HandleSystemStatus)
		r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
	})

	s.router.Route(APIPrefix, func(r chi.Router) {
		riskhandlers.NewHandler(c.Profiler, s.log).RegisterRoutes(r)
		optimizationhandlers.NewHandler(c.Optimizer, s.log).RegisterRoutes(r)
		backtesthandlers.NewHandler(c.Backtester, s.log).RegisterRoutes(r)
		advisorhandlers.NewHandler(c.Advisor, s.log).RegisterRoutes(r)
		universehandlers.NewHandler(c.Store, s.log).RegisterRoutes(r)
		markethandlers.NewHandler(c.Market, s.log).RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

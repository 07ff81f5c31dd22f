package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/r3d91ll/spectra/pkg/config"
	"github.com/r3d91ll/spectra/pkg/results"
)

// Server represents the HTTP API server for Spectra.
type Server struct {
	httpServer *http.Server
	router     *Router
	config     config.ServerConfig
	logger     zerolog.Logger

	hub     *Hub
	metrics *Metrics

	// mu protects server state
	mu      sync.RWMutex
	running bool
}

// Deps are the collaborators the HTTP handlers work against.
type Deps struct {
	Registry  *results.Registry
	Processor Processor
	Upload    config.UploadConfig
	Chart     config.ChartConfig
	Bounds    config.ProcessorConfig
	Metrics   *Metrics
	Logger    *zerolog.Logger
}

// NewServer creates a server and registers every route on its router.
func NewServer(cfg config.ServerConfig, deps Deps) *Server {
	if cfg.Port == 0 {
		cfg.Port = 8081
	}
	if deps.Registry == nil {
		deps.Registry = results.NewRegistry()
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	logger := defaultLogger()
	if deps.Logger != nil {
		logger = *deps.Logger
	}

	hub := NewHub(deps.Metrics)
	s := &Server{
		router:  NewRouter(),
		config:  cfg,
		logger:  logger,
		hub:     hub,
		metrics: deps.Metrics,
	}

	upgrader := newUpgrader(cfg.CORSOrigins)

	NewHealthHandler(deps.Processor).RegisterRoutes(s.router)
	NewConfigHandler(deps.Upload, deps.Chart, deps.Bounds).RegisterRoutes(s.router)
	NewUploadHandler(deps, hub).RegisterRoutes(s.router)
	NewResultsHandler(deps.Registry, hub).RegisterRoutes(s.router)
	NewDownloadHandler(deps.Registry).RegisterRoutes(s.router)
	NewChartHandler(deps.Registry, deps.Chart, deps.Metrics).RegisterRoutes(s.router)
	NewSessionHandler(deps.Registry, deps.Chart, deps.Metrics, upgrader, logger).RegisterRoutes(s.router)
	NewEventsHandler(hub, upgrader, logger).RegisterRoutes(s.router)
	s.router.GET("/metrics", deps.Metrics.Handler().ServeHTTP)

	return s
}

// Address returns the server address in host:port format.
func (s *Server) Address() string {
	return s.config.Addr()
}

// Router returns the underlying router for registering handlers.
func (s *Server) Router() *Router {
	return s.router
}

// Hub returns the result event hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	middlewares := []Middleware{
		RecoveryMiddleware(s.logger),
		RequestIDMiddleware,
		MetricsMiddleware(s.metrics),
	}
	if s.config.EnableLogging {
		middlewares = append(middlewares, LoggingMiddleware(s.logger))
	}
	if len(s.config.CORSOrigins) > 0 {
		middlewares = append(middlewares, CORSMiddleware(s.config.CORSOrigins))
	}
	return Chain(s.router, middlewares...)
}

// Start starts the event hub and the HTTP server in goroutines.
// It returns immediately after starting. Use Shutdown() to stop.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	go s.hub.Run()

	s.httpServer = &http.Server{
		Addr:         s.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.running = true

	// Use error channel to detect binding failures
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.Address()).Msg("starting server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("server error")
			errCh <- err
		}
		close(errCh)
	}()

	// Wait briefly to catch immediate binding errors (e.g., port in use)
	select {
	case err := <-errCh:
		s.running = false
		s.hub.Stop()
		return fmt.Errorf("server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Shutdown gracefully shuts down the server with a timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.logger.Info().Msg("shutting down server")
	s.running = false
	s.hub.Stop()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// IsRunning returns true if the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// makeOriginChecker creates a function that validates WebSocket origins
// against the configured CORS origins list.
func makeOriginChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]bool)
	for _, origin := range allowedOrigins {
		if origin == "*" {
			return func(r *http.Request) bool {
				return true
			}
		}
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Same-origin requests carry no Origin header.
			return true
		}
		return allowed[origin]
	}
}

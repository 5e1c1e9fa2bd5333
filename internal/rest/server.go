// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-cipherlab.
//
// go-cipherlab is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeremyhahn/go-cipherlab/internal/service"
	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/auth"
	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/logger"
	"github.com/jeremyhahn/go-cipherlab/pkg/correlation"
	"github.com/jeremyhahn/go-cipherlab/pkg/metrics"
	"github.com/jeremyhahn/go-cipherlab/pkg/ratelimit"
)

// Server represents the REST API server.
type Server struct {
	server        *http.Server
	handlers      *HandlerContext
	addr          string
	tlsConfig     *tls.Config
	authenticator auth.Authenticator
	rateLimiter   *ratelimit.Limiter
	logger        logger.Logger
	cfg           *Config
}

// Config holds the REST server configuration.
type Config struct {
	// Address is the host:port to listen on (default: ":8080")
	Address string

	// Service processes cipher jobs (required)
	Service *service.Service

	// Version is the API version string
	Version string

	// TLSConfig is the TLS configuration for HTTPS (optional)
	TLSConfig *tls.Config

	// Authenticator guards /api/v1 (optional, defaults to NoOp)
	Authenticator auth.Authenticator

	// AdminRole is required to delete stored results; empty allows
	// any authenticated caller
	AdminRole string

	// RateLimiter limits requests per client IP (optional)
	RateLimiter *ratelimit.Limiter

	// HealthChecker backs the /health probes (optional)
	HealthChecker HealthChecker

	// Logger is the logging adapter (optional, discards if not provided)
	Logger logger.Logger

	// CORSOrigins lists allowed origins; "*" allows any (default: "*")
	CORSOrigins []string

	// MaxBodyBytes caps request bodies; zero means no cap
	MaxBodyBytes int64

	// MetricsPath and MetricsHandler mount Prometheus on the API router
	// when both are set
	MetricsPath    string
	MetricsHandler http.Handler

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewServer creates a new REST API server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Service == nil {
		return nil, fmt.Errorf("service is required")
	}

	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = auth.NewNoOpAuthenticator()
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	handlers := NewHandlerContext(cfg.Service, cfg.Version)
	handlers.SetHealthChecker(cfg.HealthChecker)

	server := &Server{
		handlers:      handlers,
		addr:          cfg.Address,
		tlsConfig:     cfg.TLSConfig,
		authenticator: authenticator,
		rateLimiter:   cfg.RateLimiter,
		logger:        log,
		cfg:           cfg,
	}

	server.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           server.setupRouter(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		TLSConfig:         cfg.TLSConfig,
	}

	return server, nil
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(s.RecoveryMiddleware())
	r.Use(correlation.Middleware) // before logging so every line carries the ID
	r.Use(s.LoggingMiddleware())
	r.Use(metrics.HTTPMiddleware)
	r.Use(CORSMiddleware(s.cfg.CORSOrigins))
	if s.rateLimiter != nil && s.rateLimiter.IsEnabled() {
		r.Use(ratelimit.Middleware(s.rateLimiter))
	}

	r.Get("/health", s.handlers.HealthHandler)
	r.Head("/health", s.handlers.HealthHandler)

	// Kubernetes-style health probes (no auth required)
	r.Get("/health/live", s.handlers.LivenessHandler)
	r.Get("/health/ready", s.handlers.ReadinessHandler)
	r.Get("/health/startup", s.handlers.StartupHandler)

	if s.cfg.MetricsPath != "" && s.cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, s.cfg.MetricsPath, s.cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.AuthenticationMiddleware())
		r.Use(BodyLimitMiddleware(s.cfg.MaxBodyBytes))

		r.Get("/ciphers", s.handlers.ListCiphersHandler)

		r.Post("/encrypt", s.handlers.EncryptHandler)
		r.Post("/decrypt", s.handlers.DecryptHandler)
		r.Post("/process", s.handlers.ProcessHandler)
		r.Post("/download", s.handlers.DownloadHandler)

		r.Get("/results", s.handlers.ListResultsHandler)
		r.Get("/results/{id}", s.handlers.GetResultHandler)
		r.With(s.RequireRole(s.cfg.AdminRole)).Delete("/results/{id}", s.handlers.DeleteResultHandler)
	})

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured address and serves until Stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln, wrapping it in TLS when a TLS config is set.
func (s *Server) Serve(ln net.Listener) error {
	s.addr = ln.Addr().String()

	if s.tlsConfig != nil {
		s.logger.Info("Starting HTTPS server",
			logger.String("address", s.addr),
			logger.String("auth", s.authenticator.Name()))
		if err := s.server.ServeTLS(ln, "", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTPS server: %w", err)
		}
		return nil
	}

	s.logger.Info("Starting HTTP server",
		logger.String("address", s.addr),
		logger.String("auth", s.authenticator.Name()))
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the REST API server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down REST server")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("Failed to shutdown server", logger.Error(err))
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("REST server stopped")
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// SetHealthChecker sets the health checker for the server.
func (s *Server) SetHealthChecker(checker HealthChecker) {
	s.handlers.SetHealthChecker(checker)
}

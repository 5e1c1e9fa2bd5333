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

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeremyhahn/go-cipherlab/internal/config"
	"github.com/jeremyhahn/go-cipherlab/internal/rest"
	"github.com/jeremyhahn/go-cipherlab/internal/service"
	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/logger"
	"github.com/jeremyhahn/go-cipherlab/pkg/engine"
	"github.com/jeremyhahn/go-cipherlab/pkg/health"
	"github.com/jeremyhahn/go-cipherlab/pkg/metrics"
	"github.com/jeremyhahn/go-cipherlab/pkg/ratelimit"
	"github.com/jeremyhahn/go-cipherlab/pkg/storage"
	"github.com/jeremyhahn/go-cipherlab/pkg/storage/file"
	"github.com/jeremyhahn/go-cipherlab/pkg/storage/memory"
)

// Server runs the cipher service behind the REST API and, optionally, a
// separate Prometheus listener.
type Server struct {
	config   *config.Config
	mu       sync.RWMutex
	logLevel *slog.LevelVar
	logger   logger.Logger
	output   io.Writer

	service *service.Service
	store   *storage.ResultStore

	restServer    *rest.Server
	restListener  net.Listener
	metricsServer *http.Server
	rateLimiter   *ratelimit.Limiter

	healthChecker    *health.Checker
	metricsCollector *metrics.ResourceCollector

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	shutdownCh chan struct{}
	closeOnce  sync.Once
}

// Option customises a Server.
type Option func(*Server)

// WithLogOutput sends server logs to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(s *Server) {
		s.output = w
	}
}

// New creates a server from cfg. Nothing listens until Start.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:     cfg,
		logLevel:   new(slog.LevelVar),
		output:     os.Stdout,
		ctx:        ctx,
		cancel:     cancel,
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.setupLogger(cfg.Logging)

	store, err := newResultStore(cfg.Storage)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize result store: %w", err)
	}
	s.store = store

	s.service = service.New(service.Options{
		Engine: engine.New(cfg.EngineLimits()),
		Store:  store,
		Logger: s.logger,
		Defaults: service.Defaults{
			AffineA:    cfg.Defaults.AffineA,
			AffineB:    cfg.Defaults.AffineB,
			HillMatrix: cfg.Defaults.HillMatrix,
		},
	})

	if cfg.Health.Enabled {
		s.initializeHealth()
	}

	return s, nil
}

// setupLogger builds the slog handler for cfg. The level is held in a
// LevelVar so Reload can change it on a running server.
func (s *Server) setupLogger(cfg config.LoggingConfig) logger.Logger {
	s.logLevel.Set(slogLevel(cfg.Level))

	opts := &slog.HandlerOptions{Level: s.logLevel}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(s.output, opts)
	default:
		handler = slog.NewTextHandler(s.output, opts)
	}
	return logger.NewSlogAdapter(&logger.SlogConfig{Logger: slog.New(handler)})
}

func slogLevel(level string) slog.Level {
	switch logger.ParseLevel(level) {
	case logger.LevelDebug:
		return slog.LevelDebug
	case logger.LevelWarn:
		return slog.LevelWarn
	case logger.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// getBuildVersion retrieves the version from build information
func getBuildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.version" {
			if setting.Value != "" && setting.Value != "devel" {
				return setting.Value
			}
		}
		if setting.Key == "vcs.revision" {
			if len(setting.Value) >= 7 {
				return setting.Value[:7]
			}
			return setting.Value
		}
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}

// newResultStore opens the configured result backend. "none" disables
// result storage and returns a nil store.
func newResultStore(cfg config.StorageConfig) (*storage.ResultStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "none":
		return nil, nil
	case "", "memory":
		return storage.NewResultStore(memory.New(), "memory", cfg.MaxResultBytes), nil
	case "file":
		backend, err := file.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return storage.NewResultStore(backend, "file", cfg.MaxResultBytes), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// initializeHealth registers the engine self-test and, when results are
// stored, the store ping as readiness checks.
func (s *Server) initializeHealth() {
	s.healthChecker = health.NewChecker()
	if s.config.Health.CheckTimeout > 0 {
		s.healthChecker.SetTimeout(s.config.Health.CheckTimeout)
	}

	s.healthChecker.RegisterCheck("engine", health.EngineCheck(s.service))
	if s.store != nil {
		name := "store-" + s.store.Name()
		s.healthChecker.RegisterCheck(name, health.StoreCheck(name, s.store))
	}
	s.logger.Info("Health checks registered", logger.Strings("checks", s.healthChecker.Checks()))
}

// Start opens the listeners and serves in the background.
func (s *Server) Start() error {
	s.logger.Info("Starting cipherlab server...", logger.String("version", getBuildVersion()))

	if err := s.service.SelfTest(); err != nil {
		s.logger.Error("Engine self-test failed", logger.Error(err))
		return fmt.Errorf("engine self-test failed: %w", err)
	}

	if s.config.Metrics.Enabled {
		s.initializeMetrics()
	} else {
		metrics.Disable()
	}

	if s.config.RateLimit.Enabled {
		s.rateLimiter = ratelimit.New(&ratelimit.Config{
			Enabled:           true,
			RequestsPerMinute: s.config.RateLimit.RequestsPerMin,
			Burst:             s.config.RateLimit.Burst,
		})
	}

	if err := s.startREST(); err != nil {
		s.shutdownRuntime()
		return err
	}

	if s.config.Metrics.Enabled && s.config.Metrics.Port != 0 {
		if err := s.startMetrics(); err != nil {
			s.shutdownRuntime()
			return err
		}
	}

	if s.healthChecker != nil {
		s.healthChecker.MarkStarted()
		s.logger.Info("Health checker marked as started")
	}

	s.logger.Info("Server started", logger.String("address", s.restListener.Addr().String()))
	return nil
}

// startREST builds the REST server and serves it on a fresh listener.
func (s *Server) startREST() error {
	authenticator, err := s.config.Auth.CreateAuthenticator()
	if err != nil {
		return fmt.Errorf("failed to create authenticator: %w", err)
	}

	tlsConfig, err := s.config.TLS.LoadTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to load TLS config: %w", err)
	}

	restConfig := &rest.Config{
		Address:       s.config.Address(),
		Service:       s.service,
		Version:       getBuildVersion(),
		TLSConfig:     tlsConfig,
		Authenticator: authenticator,
		AdminRole:     s.config.Auth.AdminRole,
		RateLimiter:   s.rateLimiter,
		Logger:        s.logger,
		CORSOrigins:   s.config.Server.CORSOrigins,
		MaxBodyBytes:  requestBodyLimit(s.config.EngineLimits()),
		ReadTimeout:   s.config.Server.ReadTimeout,
		WriteTimeout:  s.config.Server.WriteTimeout,
	}
	if s.healthChecker != nil {
		restConfig.HealthChecker = s.healthChecker
	}
	// Without a dedicated port, metrics share the API listener
	if s.config.Metrics.Enabled && s.config.Metrics.Port == 0 {
		restConfig.MetricsPath = s.config.Metrics.Path
		restConfig.MetricsHandler = promhttp.Handler()
	}

	s.restServer, err = rest.NewServer(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create REST server: %w", err)
	}

	ln, err := net.Listen("tcp", restConfig.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", restConfig.Address, err)
	}
	s.restListener = ln

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.restServer.Serve(ln); err != nil {
			s.logger.Error("REST server error", logger.Error(err))
		}
	}()
	return nil
}

// requestBodyLimit leaves room for multipart framing and form fields on
// top of the largest accepted payload.
func requestBodyLimit(limits engine.Limits) int64 {
	if limits.MaxPayloadBytes <= 0 {
		return 0
	}
	return int64(limits.MaxPayloadBytes) + 1<<20
}

// initializeMetrics enables collection and starts the resource collector.
func (s *Server) initializeMetrics() {
	s.logger.Info("Initializing metrics...")

	metrics.Enable()
	s.metricsCollector = metrics.StartResourceCollector(s.ctx, 30*time.Second)
	metrics.SetSelfTestHealth(true)

	s.logger.Info("Metrics initialized successfully")
}

// startMetrics serves Prometheus on its own port.
func (s *Server) startMetrics() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Metrics.Port)

	mux := http.NewServeMux()
	mux.Handle(s.config.Metrics.Path, promhttp.Handler())

	s.metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}

	s.logger.Info("Starting metrics server",
		logger.String("address", ln.Addr().String()),
		logger.String("path", s.config.Metrics.Path))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error", logger.Error(err))
		}
	}()
	return nil
}

// Addr returns the REST listener address once the server has started.
func (s *Server) Addr() string {
	if s.restListener == nil {
		return ""
	}
	return s.restListener.Addr().String()
}

// Service returns the cipher service.
func (s *Server) Service() *service.Service {
	return s.service
}

// RESTServer returns the REST server instance
func (s *Server) RESTServer() *rest.Server {
	return s.restServer
}

// HealthChecker returns the health checker, nil when health is disabled.
func (s *Server) HealthChecker() *health.Checker {
	return s.healthChecker
}

// Shutdown gracefully shuts down all listeners and closes the store.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server...")

	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.healthChecker != nil {
		s.healthChecker.MarkNotStarted()
	}

	var errs []error
	if s.restServer != nil {
		s.logger.Info("Shutting down REST server...")
		if err := s.restServer.Stop(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.metricsServer != nil {
		s.logger.Info("Shutting down metrics server...")
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All servers stopped")
	case <-shutdownCtx.Done():
		s.logger.Warn("Shutdown timeout exceeded, forcing stop")
	}

	s.shutdownRuntime()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Error closing result store", logger.Error(err))
			errs = append(errs, fmt.Errorf("result store: %w", err))
		}
	}

	s.closeOnce.Do(func() { close(s.shutdownCh) })
	s.logger.Info("Server shutdown complete")

	return errors.Join(errs...)
}

// shutdownRuntime stops the background helpers started by Start.
func (s *Server) shutdownRuntime() {
	if s.metricsCollector != nil {
		s.metricsCollector.Stop()
		s.metricsCollector = nil
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.rateLimiter = nil
	}
	s.cancel()
}

// WaitForShutdown blocks until the server is shut down
func (s *Server) WaitForShutdown() {
	<-s.shutdownCh
}

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	return ctx
}

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"construct-hq/loom/pkg/completion"
	"construct-hq/loom/pkg/config"
	"construct-hq/loom/pkg/providers"
	"construct-hq/loom/pkg/server/middleware"
	"construct-hq/loom/pkg/telemetry/health"
	"construct-hq/loom/pkg/telemetry/metrics"
	"construct-hq/loom/pkg/telemetry/tracing"
)

// Server is the Loom HTTP server.
type Server struct {
	config     *config.Config
	dispatcher *completion.Dispatcher
	backends   *providers.Registry
	checker    *health.Checker
	metrics    *metrics.Collector
	tracer     *tracing.Tracer
	logger     *slog.Logger
	httpLogger *slog.Logger

	version   string
	commit    string
	buildTime string

	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics serves c on the metrics path and records HTTP metrics on it.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithTracer records a server span per request on t.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// WithReadinessCheck adds a check to GET /ready.
func WithReadinessCheck(name string, check health.CheckFunc) Option {
	return func(s *Server) {
		s.checker.RegisterCheck(name, check)
	}
}

// WithVersion sets the build information served on GET /version.
func WithVersion(version, commit, buildTime string) Option {
	return func(s *Server) {
		s.version, s.commit, s.buildTime = version, commit, buildTime
	}
}

// New creates a server. cfg must have defaults applied.
func New(cfg *config.Config, d *completion.Dispatcher, backends *providers.Registry, opts ...Option) *Server {
	s := &Server{
		config:       cfg,
		dispatcher:   d,
		backends:     backends,
		checker:      health.New(0),
		logger:       slog.Default(),
		version:      "dev",
		commit:       "unknown",
		buildTime:    "unknown",
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpLogger = s.logger
	s.logger = s.logger.With("component", "server")
	return s
}

// Start listens on server.listen_address and serves until ctx is cancelled
// or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or Shutdown is called. It
// takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case <-s.shutdownChan:
		return nil
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully stops the server, waiting up to
// server.shutdown_timeout for in-flight requests. It is safe to call more
// than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		httpServer := s.httpServer
		s.mu.Unlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		close(s.shutdownChan)

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /completions", s.handleCompletion(""))
	mux.HandleFunc("POST /completions/mancer", s.handleCompletion(mancerBackend))
	mux.HandleFunc("POST /prompt", s.handlePrompt)

	mux.Handle("GET /health", s.checker.LivenessHandler())
	mux.Handle("GET /ready", s.checker.ReadinessHandler())
	mux.Handle("GET /version", health.VersionHandler(s.version, s.commit, s.buildTime))
	mux.HandleFunc("GET /health/backends", s.handleBackendHealth)

	if s.metrics != nil {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Metrics(s.metrics)(handler)
	handler = middleware.Tracing(s.tracer)(handler)
	handler = middleware.CORS(s.config.Server.CORS)(handler)
	handler = middleware.Logging(s.httpLogger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.logger)(handler)
	return handler
}

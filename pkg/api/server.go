// Package api serves the codec registry over HTTP: layouts, encode and decode
// of registered records, and optional snapshot storage.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cheetah-game-platform/realtime/pkg/codec"
)

const (
	defaultMaxBodySize     = 1 << 20
	defaultShutdownTimeout = 10 * time.Second
)

// Server routes API requests to the codec registry
type Server struct {
	registry  *codec.Registry
	config    ServerConfig
	metrics   *Metrics
	logger    *zap.Logger
	snapshots SnapshotStore
	recorder  Recorder
	handler   http.Handler
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics the server records to
func WithMetrics(metrics *Metrics) Option {
	return func(s *Server) {
		s.metrics = metrics
	}
}

// WithSnapshots enables the snapshot endpoints
func WithSnapshots(store SnapshotStore) Option {
	return func(s *Server) {
		s.snapshots = store
	}
}

// WithRecorder appends every encoded and decoded record to a capture log
func WithRecorder(recorder Recorder) Option {
	return func(s *Server) {
		s.recorder = recorder
	}
}

// NewServer creates a new API server
func NewServer(reg *codec.Registry, config ServerConfig, opts ...Option) *Server {
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = defaultMaxBodySize
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		registry: reg,
		config:   config,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}

	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", s.metrics.Handler())

	m := s.metrics
	r.Route("/api/v1", func(r chi.Router) {
		if s.config.APIKey != "" {
			r.Use(m.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))
		}

		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Codecs
		r.Get("/codecs", m.InstrumentHandler("GET", "/api/v1/codecs", s.handleListCodecs))
		r.Get("/codecs/{name}", m.InstrumentHandler("GET", "/api/v1/codecs/{name}", s.handleGetCodec))
		r.Post("/codecs/{name}/encode", m.InstrumentHandler("POST", "/api/v1/codecs/{name}/encode", s.handleEncode))
		r.Post("/codecs/{name}/decode", m.InstrumentHandler("POST", "/api/v1/codecs/{name}/decode", s.handleDecode))
		r.Post("/codecs/{name}/snapshots", m.InstrumentHandler("POST", "/api/v1/codecs/{name}/snapshots", s.handleCreateSnapshot))

		// Snapshots
		r.Get("/snapshots", m.InstrumentHandler("GET", "/api/v1/snapshots", s.handleListSnapshots))
		r.Get("/snapshots/{id}", m.InstrumentHandler("GET", "/api/v1/snapshots/{id}", s.handleGetSnapshot))
		r.Delete("/snapshots/{id}", m.InstrumentHandler("DELETE", "/api/v1/snapshots/{id}", s.handleDeleteSnapshot))
	})

	return r
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Bind, fmt.Sprint(s.config.Port))
}

// Run listens on the configured address and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("api server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		s.logger.Info("api server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

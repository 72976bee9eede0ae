package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/queryparams/pkg/queryparams"
	"github.com/vango-dev/queryparams/pkg/session"
)

// tracerName is the instrumentation name of script-run spans.
const tracerName = "github.com/vango-dev/queryparams/pkg/server"

// App is the application script. It runs on connect and on every rerun with
// the connection's session and its query params. Params persist across
// reruns of the same connection.
type App func(ctx context.Context, s *session.Session, params *queryparams.Store) error

// Server serves sessions over WebSocket.
type Server struct {
	config   *Config
	app      App
	sessions *session.Manager
	metrics  *session.Metrics
	registry *prometheus.Registry
	tracer   trace.Tracer
	upgrader websocket.Upgrader
	logger   *slog.Logger

	connMu sync.Mutex
	conns  map[*websocket.Conn]struct{}

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server running app for every connection.
func New(config *Config, app App, opts ...Option) *Server {
	config = config.withDefaults()

	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	metrics := session.NewMetrics(
		session.WithNamespace(config.MetricsNamespace),
		session.WithRegistry(registry),
	)

	s := &Server{
		config:   config,
		app:      app,
		sessions: session.NewManager(metrics),
		metrics:  metrics,
		registry: registry,
		tracer:   tp.Tracer(tracerName),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		conns:  make(map[*websocket.Conn]struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get(s.config.Path, s.HandleWebSocket)
	return r
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// SessionHeaders returns a copy of the WebSocket request headers of the
// session with the given ID.
func (s *Server) SessionHeaders(id string) (http.Header, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Headers(), nil
}

// Config returns the effective configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address, "path", s.config.Path)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.sessions.CloseAll()
	s.closeConns()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) trackConn(conn *websocket.Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrackConn(conn *websocket.Conn) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	delete(s.conns, conn)
}

// closeConns closes hijacked WebSocket connections, which http.Server.Shutdown
// does not track.
func (s *Server) closeConns() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

package preview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loom-ui/loom/internal/config"
	"github.com/loom-ui/loom/pkg/engine"
)

// RootFunc builds a fresh root definition for each connecting client.
// Sessions never share component state, so every connection gets its own.
type RootFunc func() *engine.Definition

// Server is the development preview server: one page route, one WebSocket
// endpoint, and optionally a Prometheus metrics endpoint.
type Server struct {
	cfg      *config.Resolved
	log      *slog.Logger
	root     RootFunc
	registry *prometheus.Registry
	metrics  *engine.Metrics
	upgrader websocket.Upgrader
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New creates a preview server for the given resolved configuration.
func New(cfg *config.Resolved, root RootFunc, opts ...Option) *Server {
	s := &Server{
		cfg:  cfg,
		log:  slog.Default(),
		root: root,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Development tool: same-origin enforcement would only get in
			// the way of localhost port mapping.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "preview")

	if cfg.Metrics {
		s.registry = prometheus.NewRegistry()
		s.metrics = engine.NewMetrics(s.registry)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s
}

// Handler returns the server's HTTP handler, for embedding or tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview server listening",
			"addr", s.cfg.Addr(), "app", s.cfg.AppName, "metrics", s.cfg.Metrics)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexPage(s.cfg.AppName)))
}

// handleWS upgrades the connection and runs the session's read loop until
// the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sess, err := NewSession(s.root(), wsWriter{conn: conn}, s.log, s.metrics)
	if err != nil {
		s.log.Error("session start failed", "error", err)
		return
	}
	defer sess.Close()

	for {
		var ev EventFrame
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.log.Error("read error", "error", err)
			}
			return
		}
		if err := sess.HandleEvent(ev); err != nil {
			if !errors.Is(err, context.Canceled) {
				s.log.Error("event handling failed", "error", err)
			}
			return
		}
	}
}

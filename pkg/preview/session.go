package preview

import (
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"

	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/host"
)

// Session owns one connected client: a private document, an engine, and the
// mounted root. The engine is single-goroutine, so every entry point takes
// the session lock.
type Session struct {
	mu      sync.Mutex
	log     *slog.Logger
	doc     *host.Document
	eng     *engine.Engine
	root    *engine.Instance
	writer  FrameWriter
	metrics *engine.Metrics
	pending []host.Mutation
	closed  bool
}

// NewSession mounts def into a fresh document and sends the init frame.
func NewSession(def *engine.Definition, writer FrameWriter, log *slog.Logger, metrics *engine.Metrics) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		log:     log.With("component", "preview-session"),
		doc:     host.NewDocument(),
		writer:  writer,
		metrics: metrics,
	}
	s.doc.Observe(s.observe)

	opts := []engine.Option{
		engine.WithLogger(s.log),
		engine.WithTracer(otel.Tracer("loom/preview")),
	}
	if metrics != nil {
		opts = append(opts, engine.WithMetrics(metrics))
	}
	s.eng = engine.New(s.doc, opts...)

	root, err := s.eng.Mount(def, s.doc.Root())
	if err != nil {
		_ = writer.WriteFrame(Frame{Type: FrameError, Message: err.Error()})
		return nil, fmt.Errorf("preview: mount root: %w", err)
	}
	s.root = root

	// The init frame carries the whole annotated tree; mutations recorded
	// during the mount are already part of it.
	s.pending = nil
	if err := writer.WriteFrame(Frame{
		Type: FrameInit,
		HTML: s.doc.RenderStringAnnotated(s.doc.Root()),
	}); err != nil {
		return nil, fmt.Errorf("preview: send init frame: %w", err)
	}
	return s, nil
}

func (s *Session) observe(m host.Mutation) {
	s.pending = append(s.pending, m)
	if s.metrics != nil {
		s.metrics.ObserveMutation(m)
	}
}

// HandleEvent dispatches a client event into the engine and streams the
// resulting mutations back as one patch frame.
func (s *Session) HandleEvent(ev EventFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	node, ok := s.doc.NodeByID(ev.Node)
	if !ok {
		s.log.Warn("event for unknown node", "node_id", ev.Node, "event", ev.Event)
		return s.writer.WriteFrame(Frame{
			Type:    FrameError,
			Message: fmt.Sprintf("unknown node %d", ev.Node),
		})
	}

	s.doc.Dispatch(node, host.Event{Type: ev.Event, Value: ev.Value})
	return s.flushLocked()
}

// flushLocked sends accumulated mutations as a patch frame, if any. The
// frame also carries the annotated tree: the thin client applies attribute
// and text mutations in place and falls back to the snapshot for
// structural ones.
func (s *Session) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}
	muts := s.pending
	s.pending = nil
	return s.writer.WriteFrame(Frame{
		Type:      FramePatch,
		Mutations: muts,
		HTML:      s.doc.RenderStringAnnotated(s.doc.Root()),
	})
}

// Close unmounts the root and detaches the session from its document.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.doc.Observe(nil)
	if s.root != nil {
		s.eng.Unmount(s.root)
		s.root = nil
	}
}

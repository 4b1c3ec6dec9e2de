package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/template"
)

// Engine reconciles component trees against one host document. All entry
// points must be called from a single goroutine; see the package comment.
type Engine struct {
	doc     *host.Document
	log     *slog.Logger
	tracer  trace.Tracer
	metrics *Metrics

	nextInstanceID uint64
	instances      map[uint64]*Instance
	stack          []*Ctx

	states  *stateStore
	effects *effectStore

	// re-render work queue; see queue.go
	dirty    []*Instance
	dirtySet map[uint64]bool
	flushing bool
	depth    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithTracer enables tracing spans around mount, update and re-render.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithMetrics wires engine counters to a Metrics set.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an engine bound to doc.
func New(doc *host.Document, opts ...Option) *Engine {
	e := &Engine{
		doc:       doc,
		log:       slog.Default(),
		instances: make(map[uint64]*Instance),
		states:    newStateStore(),
		effects:   newEffectStore(),
		dirtySet:  make(map[uint64]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document returns the host document this engine mutates.
func (e *Engine) Document() *host.Document { return e.doc }

// Instance resolves a registered instance by id.
func (e *Engine) Instance(id uint64) (*Instance, bool) {
	inst, ok := e.instances[id]
	return inst, ok
}

// InstanceCount returns the number of registered instances.
func (e *Engine) InstanceCount() int { return len(e.instances) }

// Mount renders def and materializes it into container. Any re-renders the
// mount itself provoked (setters fired from effects) are flushed before
// Mount returns.
func (e *Engine) Mount(def *Definition, container *host.Node) (*Instance, error) {
	inst, err := e.mount(def, container, nil)
	e.flush()
	return inst, err
}

// mount is the recursive mount path. Exactly one of container and anchor is
// used: a nil anchor appends to container, otherwise the mounted roots
// replace the anchor node in the anchor's parent.
func (e *Engine) mount(def *Definition, container, anchor *host.Node) (*Instance, error) {
	if container == nil && (anchor == nil || anchor.Parent() == nil) {
		return nil, fmt.Errorf("mount: %w", ErrMountTarget)
	}

	e.depth++
	defer func() { e.depth-- }()

	e.nextInstanceID++
	inst := newInstance(e.nextInstanceID, def, container)

	end := e.spanStart("loom.mount", inst.id)
	defer end()

	// Registered before the first render so setters handed out during it
	// resolve the instance; scheduled re-renders sit in the queue until the
	// mount's depth unwinds.
	e.instances[inst.id] = inst

	tpl, err := e.invokeRender(inst)
	if err != nil {
		e.abortMount(inst)
		return nil, err
	}
	inst.template = tpl

	frag, err := e.doc.ParseFragment(tpl.Markup)
	if err != nil {
		e.abortMount(inst)
		return nil, err
	}
	if err := e.bindParts(inst, frag, tpl); err != nil {
		e.abortMount(inst)
		return nil, err
	}

	roots := frag.Children()
	if anchor != nil {
		parent := anchor.Parent()
		for _, r := range roots {
			e.doc.InsertBefore(parent, r, anchor)
		}
		e.doc.RemoveNode(anchor)
		inst.container = parent
	} else {
		for _, r := range roots {
			e.doc.InsertBefore(container, r, nil)
		}
	}
	inst.rootNodes = roots

	if e.metrics != nil {
		e.metrics.Mounts.Inc()
	}

	e.runEffects(inst)
	return inst, nil
}

// abortMount undoes the early registration of a failed mount. Hook slots
// registered by the partial render are released with it; any re-render the
// render enqueued is skipped by flush once the registry entry is gone.
func (e *Engine) abortMount(inst *Instance) {
	e.cleanupEffects(inst.id)
	e.states.release(inst.id)
	delete(e.instances, inst.id)
}

// invokeRender runs the component function inside a fresh render context.
// The context pop is exception-safe: a panicking component leaves the stack
// balanced and surfaces as an error.
func (e *Engine) invokeRender(inst *Instance) (tpl *template.Processed, err error) {
	ctx := e.startRender(inst)
	defer func() {
		e.finishRender()
		if r := recover(); r != nil {
			tpl = nil
			err = fmt.Errorf("loom: component panicked: %v", r)
		}
	}()

	tpl = inst.def.Fn(ctx, inst.def.Props)
	if tpl == nil {
		return nil, errors.New("loom: component returned a nil template")
	}

	if inst.hookCount < 0 {
		inst.hookCount = ctx.hookIndex
	} else if ctx.hookIndex != inst.hookCount {
		return nil, fmt.Errorf("instance %d: expected %d hook calls, got %d: %w",
			inst.id, inst.hookCount, ctx.hookIndex, ErrHookOrder)
	}
	return tpl, nil
}

// bindParts walks the detached subtree once, visiting element and comment
// nodes only, and binds every marker to its dynamic part.
func (e *Engine) bindParts(inst *Instance, frag *host.Node, tpl *template.Processed) error {
	for _, n := range e.doc.Collect(frag) {
		switch n.Type() {
		case host.ElementNode:
			for _, a := range n.Attrs() {
				idx, ok := template.ParseAttrMarker(a.Value)
				if !ok {
					continue
				}
				part, ok := tpl.Part(idx)
				if !ok {
					continue
				}
				switch part.Kind {
				case template.PartEvent:
					e.doc.RemoveAttribute(n, a.Name)
					e.attachEvent(inst, n, part)
				case template.PartAttribute:
					e.applyAttribute(n, part)
					inst.dynamicNodes[part.Index] = n
				}
			}
		case host.CommentNode:
			idx, ok := template.ParseCommentMarker(n.Data())
			if !ok {
				continue
			}
			part, ok := tpl.Part(idx)
			if !ok || part.Kind != template.PartContent {
				continue
			}
			if err := e.materializeContent(inst, n, part.Index, part.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// attachEvent binds an event part to its owning element.
func (e *Engine) attachEvent(inst *Instance, n *host.Node, part template.Part) {
	name := normalizeEventName(part.Name)
	ref := e.doc.AddListener(n, name, e.wrapHandler(part.Value))
	inst.listeners[part.Index] = &listenerBinding{
		node:    n,
		name:    name,
		handler: part.Value,
		ref:     ref,
	}
}

// applyAttribute sets or removes an attribute per the coercion rule.
func (e *Engine) applyAttribute(n *host.Node, part template.Part) {
	value, present := coerceAttribute(part.Value)
	if present {
		e.doc.SetAttribute(n, part.Name, value)
	} else {
		e.doc.RemoveAttribute(n, part.Name)
	}
}

// materializeContent realizes a content part at the position of anchor,
// which is consumed (replaced or removed) in the process.
func (e *Engine) materializeContent(inst *Instance, anchor *host.Node, index int, v any) error {
	switch classifyContent(v) {
	case shapeEmpty:
		text := e.doc.CreateText("")
		e.doc.ReplaceNode(anchor, text)
		inst.dynamicNodes[index] = text

	case shapeScalar:
		text := e.doc.CreateText(coerceScalar(v))
		e.doc.ReplaceNode(anchor, text)
		inst.dynamicNodes[index] = text

	case shapeNode:
		n := v.(*host.Node)
		e.doc.ReplaceNode(anchor, n)
		inst.dynamicNodes[index] = n

	case shapeComponent:
		child, err := e.mount(v.(*Definition), nil, anchor)
		if err != nil {
			return err
		}
		inst.children[index] = child

	case shapeList:
		parent := anchor.Parent()
		lb := &listBinding{
			start: e.doc.CreateComment("loom:list-start"),
			end:   e.doc.CreateComment("loom:list-end"),
		}
		e.doc.InsertBefore(parent, lb.start, anchor)
		e.doc.InsertBefore(parent, lb.end, anchor)
		e.doc.RemoveNode(anchor)
		inst.lists[index] = lb
		for _, item := range listValues(v) {
			if err := e.materializeListItem(lb, item); err != nil {
				return err
			}
		}
	}
	return nil
}

// materializeListItem appends one list item immediately before the list's
// end anchor. Nested lists are flattened in order.
func (e *Engine) materializeListItem(lb *listBinding, v any) error {
	parent := lb.end.Parent()
	switch classifyContent(v) {
	case shapeComponent:
		placeholder := e.doc.CreateComment("loom:item")
		e.doc.InsertBefore(parent, placeholder, lb.end)
		child, err := e.mount(v.(*Definition), nil, placeholder)
		if err != nil {
			return err
		}
		lb.items = append(lb.items, listItem{child: child})

	case shapeNode:
		n := v.(*host.Node)
		e.doc.InsertBefore(parent, n, lb.end)
		lb.items = append(lb.items, listItem{node: n})

	case shapeList:
		for _, nested := range listValues(v) {
			if err := e.materializeListItem(lb, nested); err != nil {
				return err
			}
		}

	default: // scalar or empty
		text := e.doc.CreateText(coerceScalar(v))
		e.doc.InsertBefore(parent, text, lb.end)
		lb.items = append(lb.items, listItem{node: text})
	}
	return nil
}

// Unmount tears an instance down: children strictly before self, so
// descendants release their host node and listener handles before this
// instance removes its own subtree.
func (e *Engine) Unmount(inst *Instance) {
	for _, i := range sortedIndices(inst.children) {
		e.Unmount(inst.children[i])
		delete(inst.children, i)
	}
	for _, i := range sortedIndices(inst.lists) {
		lb := inst.lists[i]
		e.teardownListItems(lb)
		e.doc.RemoveNode(lb.start)
		e.doc.RemoveNode(lb.end)
		delete(inst.lists, i)
	}
	for _, i := range sortedIndices(inst.listeners) {
		b := inst.listeners[i]
		e.doc.RemoveListener(b.node, b.ref)
		delete(inst.listeners, i)
	}
	for _, r := range inst.rootNodes {
		e.doc.RemoveNode(r)
	}
	inst.rootNodes = nil
	inst.dynamicNodes = make(map[int]*host.Node)

	e.cleanupEffects(inst.id)
	e.states.release(inst.id)
	delete(e.instances, inst.id)

	if e.metrics != nil {
		e.metrics.Unmounts.Inc()
	}
}

// teardownListItems unmounts every item between a list's anchors. The
// anchors themselves survive unless the whole binding goes away.
func (e *Engine) teardownListItems(lb *listBinding) {
	for _, item := range lb.items {
		if item.child != nil {
			e.Unmount(item.child)
			continue
		}
		e.doc.RemoveNode(item.node)
	}
	lb.items = nil
}

// domEvents are the bare event names an "on" prefix may be stripped down
// to. Names outside this set keep their prefix, so "online" binds "online".
var domEvents = map[string]bool{
	"click": true, "dblclick": true, "input": true, "change": true,
	"submit": true, "reset": true, "keydown": true, "keyup": true,
	"keypress": true, "focus": true, "blur": true, "mousedown": true,
	"mouseup": true, "mousemove": true, "mouseover": true, "mouseout": true,
	"mouseenter": true, "mouseleave": true, "pointerdown": true,
	"pointerup": true, "pointermove": true, "touchstart": true,
	"touchend": true, "touchmove": true, "scroll": true, "wheel": true,
	"contextmenu": true, "drag": true, "drop": true,
}

// normalizeEventName canonicalizes authored event names: lowercased, and
// when the name is "on" followed by a known DOM event the prefix is
// stripped, so @click, @onClick and @CLICK all bind "click".
func normalizeEventName(name string) string {
	name = strings.ToLower(name)
	if bare := strings.TrimPrefix(name, "on"); bare != name && domEvents[bare] {
		return bare
	}
	return name
}

// wrapHandler adapts an authored handler and runs it as one turn: setter
// calls made inside the handler coalesce in the work queue and drain in a
// single flush after the handler returns.
func (e *Engine) wrapHandler(h any) func(host.Event) {
	fn := adaptHandler(h)
	return func(ev host.Event) {
		e.depth++
		defer func() {
			e.depth--
			e.flush()
		}()
		fn(ev)
	}
}

// adaptHandler bridges the authored handler to the host listener shape.
// The compiler guarantees the value is a function.
func adaptHandler(h any) func(host.Event) {
	switch fn := h.(type) {
	case func(host.Event):
		return fn
	case func():
		return func(host.Event) { fn() }
	}
	rv := reflect.ValueOf(h)
	rt := rv.Type()
	return func(ev host.Event) {
		switch {
		case rt.NumIn() == 0:
			rv.Call(nil)
		case rt.NumIn() == 1 && rt.In(0) == reflect.TypeOf(host.Event{}):
			rv.Call([]reflect.Value{reflect.ValueOf(ev)})
		}
	}
}

// spanStart opens a tracing span when a tracer is configured and returns
// its end function; otherwise a no-op.
func (e *Engine) spanStart(name string, instanceID uint64) func() {
	if e.tracer == nil {
		return func() {}
	}
	_, span := e.tracer.Start(context.Background(), name,
		trace.WithAttributes(attribute.Int64("loom.instance_id", int64(instanceID))))
	return func() { span.End() }
}

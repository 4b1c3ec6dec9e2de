package loomtest

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/host"
)

// Recorder captures every mutation a Document performs.
type Recorder struct {
	Mutations []host.Mutation
}

// Count returns how many recorded mutations have the given op.
func (r *Recorder) Count(op host.MutationOp) int {
	n := 0
	for _, m := range r.Mutations {
		if m.Op == op {
			n++
		}
	}
	return n
}

// Reset discards all recorded mutations.
func (r *Recorder) Reset() { r.Mutations = nil }

// Fixture bundles a document, an engine and a recorder for one test.
type Fixture struct {
	t        *testing.T
	Doc      *host.Document
	Engine   *engine.Engine
	Recorder *Recorder

	roots []*engine.Instance
}

// New creates a test fixture with a quiet logger and mutation recording
// already wired.
//
// Example:
//
//	f := loomtest.New(t)
//	f.Mount(Counter())
func New(t *testing.T) *Fixture {
	t.Helper()
	doc := host.NewDocument()
	rec := &Recorder{}
	doc.Observe(func(m host.Mutation) { rec.Mutations = append(rec.Mutations, m) })
	e := engine.New(doc, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return &Fixture{t: t, Doc: doc, Engine: e, Recorder: rec}
}

// Mount mounts a component definition into the document root and fails the
// test on error. Mounted roots are unmounted automatically at test cleanup.
func (f *Fixture) Mount(def *engine.Definition) *engine.Instance {
	f.t.Helper()
	inst, err := f.Engine.Mount(def, f.Doc.Root())
	if err != nil {
		f.t.Fatalf("mount: %v", err)
	}
	f.roots = append(f.roots, inst)
	f.t.Cleanup(func() {
		if _, ok := f.Engine.Instance(inst.ID()); ok {
			f.Engine.Unmount(inst)
		}
	})
	return inst
}

// HTML serializes the whole document.
func (f *Fixture) HTML() string {
	return f.Doc.RenderString(f.Doc.Root())
}

// Find returns the first element with the given tag, in document order, or
// nil when none exists.
func (f *Fixture) Find(tag string) *host.Node {
	return findTag(f.Doc.Root(), tag)
}

func findTag(n *host.Node, tag string) *host.Node {
	if n.Type() == host.ElementNode && n.Tag() == tag {
		return n
	}
	for _, c := range n.Children() {
		if hit := findTag(c, tag); hit != nil {
			return hit
		}
	}
	return nil
}

// Click dispatches a click event at the first element with the given tag.
//
// Example:
//
//	f.Click("button")
func (f *Fixture) Click(tag string) {
	f.t.Helper()
	f.DispatchTag(tag, host.Event{Type: "click"})
}

// Input dispatches an input event carrying value at the first element with
// the given tag.
func (f *Fixture) Input(tag, value string) {
	f.t.Helper()
	f.DispatchTag(tag, host.Event{Type: "input", Value: value})
}

// DispatchTag dispatches an arbitrary event at the first element with the
// given tag, failing the test when no such element exists.
func (f *Fixture) DispatchTag(tag string, ev host.Event) {
	f.t.Helper()
	n := f.Find(tag)
	if n == nil {
		f.t.Fatalf("no <%s> element in:\n%s", tag, truncate(f.HTML(), 500))
	}
	f.Doc.Dispatch(n, ev)
}

// ExpectContains asserts that the rendered document contains the substring.
//
// Example:
//
//	f.ExpectContains("Welcome Admin")
func (f *Fixture) ExpectContains(expected string) {
	f.t.Helper()
	html := f.HTML()
	if !strings.Contains(html, expected) {
		f.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered document does not contain the
// substring.
func (f *Fixture) ExpectNotContains(unexpected string) {
	f.t.Helper()
	html := f.HTML()
	if strings.Contains(html, unexpected) {
		f.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that the document contains an element with the tag.
//
// Example:
//
//	f.ExpectElement("button")
func (f *Fixture) ExpectElement(tag string) {
	f.t.Helper()
	if f.Find(tag) == nil {
		f.t.Errorf("expected a <%s> element, got:\n%s", tag, truncate(f.HTML(), 500))
	}
}

// ExpectAttribute asserts that the rendered document contains an attribute
// with the given value.
//
// Example:
//
//	f.ExpectAttribute("class", "btn-primary")
func (f *Fixture) ExpectAttribute(attr, value string) {
	f.t.Helper()
	html := f.HTML()
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		f.t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Package loom is the authoring surface of the Loom rendering engine:
// component definition, the template tag, the render entry point, and the
// hooks available inside component bodies.
//
// A component is a function from props to a compiled template:
//
//	var Counter = loom.Define(func(ctx *engine.Ctx, _ any) *template.Processed {
//	    count, set := loom.UseState(ctx, 0)
//	    return loom.H(
//	        []string{`<button @click=`, `>clicked `, ` times</button>`},
//	        func() { _ = set.Update(func(n int) int { return n + 1 }) },
//	        count,
//	    )
//	})
//
// Calling Counter(props) packages intent only; nothing renders until the
// definition is mounted with Render.
package loom

import (
	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/template"
)

// Cleanup re-exports the effect cleanup type for component bodies.
type Cleanup = engine.Cleanup

// Event re-exports the host event type for handler signatures.
type Event = host.Event

// Define wraps a component function into a definition producer. The
// returned function is cheap and side-effect free.
func Define(fn engine.RenderFunc) func(props any) *engine.Definition {
	return func(props any) *engine.Definition {
		return &engine.Definition{Fn: fn, Props: props}
	}
}

// H compiles a template expression. Static segments and expressions follow
// the tagged-template contract: len(statics) == len(exprs)+1. Compilation
// failures are programmer errors and panic.
func H(statics []string, exprs ...any) *template.Processed {
	tpl, err := template.Process(statics, exprs)
	if err != nil {
		panic(err)
	}
	return tpl
}

// Render performs the first mount of def into container and returns the
// root instance. Every nested instance the mount produces is registered
// with the engine as it is created.
func Render(e *engine.Engine, def *engine.Definition, container *host.Node) (*engine.Instance, error) {
	return e.Mount(def, container)
}

package engine

import "fmt"

// Ctx is the render context of one component invocation: it identifies the
// instance being rendered and carries the hook slot counter. A Ctx exists
// only while its component function is executing — created on entry,
// discarded on exit. Contexts nest as a stack because mounting a child
// component happens synchronously while materializing its parent.
type Ctx struct {
	eng       *Engine
	inst      *Instance
	hookIndex int
}

// Engine returns the engine this context renders within.
func (c *Ctx) Engine() *Engine { return c.eng }

// InstanceID returns the identifier of the instance being rendered.
func (c *Ctx) InstanceID() uint64 { return c.inst.id }

// nextHookIndex reads-then-increments the hook slot counter.
func (c *Ctx) nextHookIndex() int {
	i := c.hookIndex
	c.hookIndex++
	return i
}

// startRender pushes a fresh render context for inst.
func (e *Engine) startRender(inst *Instance) *Ctx {
	c := &Ctx{eng: e, inst: inst}
	e.stack = append(e.stack, c)
	return c
}

// finishRender pops the current render context. An empty stack here is a
// bug in the engine itself, never in authored components.
func (e *Engine) finishRender() {
	if len(e.stack) == 0 {
		panic("loom: render context stack underflow")
	}
	e.stack = e.stack[:len(e.stack)-1]
}

// mustCurrent validates that c is the context currently on top of the
// render stack and returns it. Hook misuse is a programmer error, so the
// failure is a panic carrying ErrRenderContext.
func (e *Engine) mustCurrent(c *Ctx) *Ctx {
	if len(e.stack) == 0 {
		panic(fmt.Errorf("no active render: %w", ErrRenderContext))
	}
	top := e.stack[len(e.stack)-1]
	if c != nil && top != c {
		panic(fmt.Errorf("render context is not the active one: %w", ErrRenderContext))
	}
	return top
}

package loom

import "github.com/loom-ui/loom/pkg/engine"

// Setter writes a typed state slot and schedules its instance's re-render.
// Every write schedules unconditionally — there is no equality
// short-circuit; coalescing happens in the engine's work queue.
type Setter[T any] struct {
	raw *engine.StateSetter
}

// Set overwrites the slot with a direct value.
func (s *Setter[T]) Set(v T) error {
	return s.raw.Set(v)
}

// Update overwrites the slot with fn applied to the current stored value.
func (s *Setter[T]) Update(fn func(T) T) error {
	return s.raw.Update(func(prev any) any {
		v, _ := prev.(T)
		return fn(v)
	})
}

// UseState registers a state slot for the current hook position and returns
// its current value with a setter bound to the slot. The slot stores
// initial on the first render only.
func UseState[T any](ctx *engine.Ctx, initial T) (T, *Setter[T]) {
	value, raw := ctx.Engine().RegisterState(ctx, initial)
	v, _ := value.(T)
	return v, &Setter[T]{raw: raw}
}

// UseStateLazy is UseState with a deferred initializer, for initial values
// that are expensive to build.
func UseStateLazy[T any](ctx *engine.Ctx, init func() T) (T, *Setter[T]) {
	value, raw := ctx.Engine().RegisterState(ctx, func(any) any { return init() })
	v, _ := value.(T)
	return v, &Setter[T]{raw: raw}
}

// UseEffect registers a side effect for the current hook position. With no
// deps the effect runs after every render; with deps it runs when they fail
// a shallow comparison against the previous render's deps. The callback may
// return a Cleanup that runs before the next execution and on unmount.
func UseEffect(ctx *engine.Ctx, fn func() Cleanup, deps ...any) {
	ctx.Engine().RegisterEffect(ctx, fn, deps)
}

// Ref is a mutable box with a stable identity across renders. Writing it
// never schedules a re-render.
type Ref[T any] struct {
	Current T
}

// UseRef registers a ref slot for the current hook position.
func UseRef[T any](ctx *engine.Ctx, initial T) *Ref[T] {
	value, _ := ctx.Engine().RegisterState(ctx, func(any) any {
		return &Ref[T]{Current: initial}
	})
	return value.(*Ref[T])
}

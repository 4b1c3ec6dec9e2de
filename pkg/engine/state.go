package engine

import "fmt"

// stateStore holds per-instance state values keyed by hook index. State and
// effect hooks share one index space per render, so slots are sparse: a
// component interleaving the two kinds leaves gaps in each store.
type stateStore struct {
	slots map[uint64]map[int]any
}

func newStateStore() *stateStore {
	return &stateStore{slots: make(map[uint64]map[int]any)}
}

func (s *stateStore) release(instanceID uint64) {
	delete(s.slots, instanceID)
}

// StateSetter mutates one state slot and schedules its instance's
// re-render. It stays valid across renders; firing it after the instance
// unmounted returns ErrMissingInstance.
type StateSetter struct {
	eng      *Engine
	instance uint64
	slot     int
}

// Set overwrites the slot with a direct value.
func (s *StateSetter) Set(v any) error {
	return s.apply(func(any) any { return v })
}

// Update overwrites the slot with the result of fn applied to the current
// stored value.
func (s *StateSetter) Update(fn func(prev any) any) error {
	return s.apply(fn)
}

func (s *StateSetter) apply(fn func(prev any) any) error {
	inst, ok := s.eng.instances[s.instance]
	if !ok {
		return fmt.Errorf("setter for instance %d: %w", s.instance, ErrMissingInstance)
	}
	slots := s.eng.states.slots[s.instance]
	if _, ok := slots[s.slot]; !ok {
		return fmt.Errorf("setter for instance %d slot %d: %w", s.instance, s.slot, ErrMissingInstance)
	}
	slots[s.slot] = fn(slots[s.slot])
	s.eng.scheduleRerender(inst)
	return nil
}

// RegisterState resolves the state slot for the current hook call. On the
// first registration the slot stores initial — or, when initial is a
// func(any) any, the result of applying it to a nil previous value. The
// returned setter is bound to (instance, slot).
//
// There is deliberately no equality short-circuit in the setter: every call
// schedules a re-render, and coalescing happens in the engine's work queue.
func (e *Engine) RegisterState(c *Ctx, initial any) (any, *StateSetter) {
	ctx := e.mustCurrent(c)
	idx := ctx.nextHookIndex()
	id := ctx.inst.id

	setter := &StateSetter{eng: e, instance: id, slot: idx}

	slots := e.states.slots[id]
	if v, ok := slots[idx]; ok {
		return v, setter
	}

	if up, ok := initial.(func(any) any); ok {
		initial = up(nil)
	}
	if slots == nil {
		slots = make(map[int]any)
		e.states.slots[id] = slots
	}
	slots[idx] = initial
	return initial, setter
}

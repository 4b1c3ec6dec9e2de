package engine

// Cleanup is the optional teardown a side effect returns. It runs before
// the effect's next execution and when the owning instance unmounts.
type Cleanup func()

// effectSlot is the bookkeeping for one effect hook slot.
type effectSlot struct {
	callback func() Cleanup
	deps     []any
	prevDeps []any
	cleanup  Cleanup
	needsRun bool
}

// effectStore holds per-instance effect records keyed by hook index. The
// index space is shared with state hooks, so the map is sparse.
type effectStore struct {
	slots map[uint64]map[int]*effectSlot
}

func newEffectStore() *effectStore {
	return &effectStore{slots: make(map[uint64]map[int]*effectSlot)}
}

// RegisterEffect resolves the effect slot for the current hook call. A nil
// deps list means the effect runs after every render; otherwise it runs
// when the deps fail a shallow pairwise comparison against the previously
// committed deps. needsRun is sticky until the effect actually runs.
func (e *Engine) RegisterEffect(c *Ctx, fn func() Cleanup, deps []any) {
	ctx := e.mustCurrent(c)
	idx := ctx.nextHookIndex()
	id := ctx.inst.id

	slots := e.effects.slots[id]
	if slot, ok := slots[idx]; ok {
		shouldRun := deps == nil || !shallowEqual(deps, slot.prevDeps)
		slot.callback = fn
		slot.deps = deps
		slot.needsRun = slot.needsRun || shouldRun
		return
	}

	if slots == nil {
		slots = make(map[int]*effectSlot)
		e.effects.slots[id] = slots
	}
	slots[idx] = &effectSlot{
		callback: fn,
		deps:     deps,
		needsRun: true,
	}
}

// runEffects executes every flagged effect of inst in hook-index order:
// previous cleanup first, then the callback, whose return value becomes the
// new cleanup. Deps are committed only when the effect actually runs.
func (e *Engine) runEffects(inst *Instance) {
	slots := e.effects.slots[inst.id]
	for _, idx := range sortedIndices(slots) {
		slot := slots[idx]
		if !slot.needsRun {
			continue
		}
		if slot.cleanup != nil {
			slot.cleanup()
			slot.cleanup = nil
		}
		slot.cleanup = slot.callback()
		slot.needsRun = false
		slot.prevDeps = slot.deps
	}
}

// cleanupEffects invokes every stored cleanup of an instance in hook-index
// order and discards its effect slots. Called as part of unmount.
func (e *Engine) cleanupEffects(instanceID uint64) {
	slots := e.effects.slots[instanceID]
	for _, idx := range sortedIndices(slots) {
		if slot := slots[idx]; slot.cleanup != nil {
			slot.cleanup()
		}
	}
	delete(e.effects.slots, instanceID)
}

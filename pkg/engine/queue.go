package engine

import "time"

// Rerender re-invokes the instance's component function with its current
// stored props and diffs the result against the mounted state. A component
// failure (panic or hook-order violation) leaves the previous tree fully
// intact; the failure is logged, never partially applied.
func (e *Engine) Rerender(inst *Instance) {
	e.rerender(inst)
	e.flush()
}

func (e *Engine) rerender(inst *Instance) {
	e.depth++
	defer func() { e.depth-- }()

	end := e.spanStart("loom.rerender", inst.id)
	defer end()

	start := time.Now()
	tpl, err := e.invokeRender(inst)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RenderFailures.Inc()
		}
		e.log.Error("re-render failed; previous tree left untouched",
			"instance_id", inst.id, "error", err)
		return
	}
	if err := e.update(inst, tpl); err != nil {
		e.log.Error("update failed", "instance_id", inst.id, "error", err)
		return
	}
	e.runEffects(inst)

	if e.metrics != nil {
		e.metrics.Rerenders.Inc()
		e.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	}
}

// scheduleRerender enqueues an instance for re-render and drains the queue
// unless a mount/update/render pass is already on the stack — in that case
// the enclosing pass drains it, so several setter calls within one
// synchronous turn coalesce into a single patch pass per instance.
func (e *Engine) scheduleRerender(inst *Instance) {
	if !e.dirtySet[inst.id] {
		e.dirtySet[inst.id] = true
		e.dirty = append(e.dirty, inst)
	}
	e.flush()
}

// flush drains the re-render queue. Reentrant calls and calls made while a
// render is active are no-ops; the outermost caller drains everything,
// including work queued by the re-renders themselves.
func (e *Engine) flush() {
	if e.flushing || e.depth > 0 || len(e.stack) > 0 {
		return
	}
	e.flushing = true
	defer func() { e.flushing = false }()

	for len(e.dirty) > 0 {
		inst := e.dirty[0]
		e.dirty = e.dirty[1:]
		delete(e.dirtySet, inst.id)
		if _, ok := e.instances[inst.id]; !ok {
			continue // unmounted while queued
		}
		e.rerender(inst)
	}
}

// Package engine is the reconciliation core: it mounts compiled templates
// into a host tree, diffs re-rendered templates against the mounted state,
// and patches the tree in place.
//
// One Engine serves one application root. It owns the instance registry,
// the render context stack, and the per-instance state and effect stores —
// there is no process-wide shared state, so several engines can coexist.
// Hook calls receive the active render context (*Ctx) explicitly.
//
// The core is fully synchronous: mounting, updating and unmounting all run
// to completion on the calling goroutine, and no partial tree state is ever
// observable between calls. State setters enqueue re-renders into a small
// work queue with a reentrancy guard, so several setter calls within one
// synchronous turn coalesce into a single patch pass.
package engine

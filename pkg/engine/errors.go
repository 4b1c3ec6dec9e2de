package engine

import "errors"

// ErrRenderContext is raised (by panic, wrapped) when a hook is invoked
// with no active render context, or with a context that is not the one
// currently rendering.
var ErrRenderContext = errors.New("loom: hook used outside render")

// ErrMissingInstance is returned when a state setter fires for an instance
// that is no longer registered — typically a use-after-unmount.
var ErrMissingInstance = errors.New("loom: instance no longer mounted")

// ErrMountTarget is returned when neither a container nor an anchor with a
// live parent is available at mount time.
var ErrMountTarget = errors.New("loom: no mount target")

// ErrHookOrder is produced when a component body calls a different number
// of hooks than it did on its first render. Failing fast here prevents
// state from being silently misattributed to the wrong slot.
var ErrHookOrder = errors.New("loom: hook call count changed between renders")

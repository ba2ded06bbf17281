package api

// Phase selects when a middleware entry runs relative to the action body.
type Phase string

const (
	// PhasePre runs before the action body, while nothing has committed.
	PhasePre Phase = "pre"

	// PhasePost runs after the final commit of a successful call, and
	// after the failure point of a failed one (with Err set).
	PhasePost Phase = "post"
)

// MiddlewareFunc observes one invocation. Hooks run synchronously and must
// not mutate state; they read it through the context's accessor only.
// A pre hook returning a non-nil error fails the call before the action
// body runs. A post hook error fails an otherwise successful call without
// unwinding committed state; on an already failed call it is logged and
// discarded so the original failure settles the promise.
type MiddlewareFunc[S any] func(mc MiddlewareContext[S]) error

// Middleware is one registered hook.
type Middleware[S any] struct {
	Phase Phase
	Fn    MiddlewareFunc[S]

	// Meta is an opaque mapping supplied at registration and passed
	// unchanged to Fn on every invocation.
	Meta map[string]any
}

// MiddlewareContext carries one call's metadata into a hook.
type MiddlewareContext[S any] struct {
	// State reads the current committed state.
	State func() S

	// Action is the invoked action's name.
	Action string

	// Args are the caller-supplied arguments, excluding the injected
	// Params bundle.
	Args []any

	// Meta is the registering entry's Meta mapping.
	Meta map[string]any

	// Err is the triggering failure when a post hook runs after a failed
	// call; nil otherwise.
	Err error
}

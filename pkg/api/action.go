package api

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Table maps action names to their implementations. It is validated once
// when the store is built and must not be mutated afterwards.
type Table[S any] map[string]ActionFunc[S]

// ActionFunc computes the next state (or a sequence of states) for one
// invocation. The injected Params precede the caller-supplied args.
//
// Actions must keep all state in the store: the engine serializes
// invocations, so an action body can rely on Params.State returning the
// latest committed value at every point of its execution.
type ActionFunc[S any] func(ctx context.Context, p Params[S], args ...any) (Result[S], error)

// Params is the parameter bundle injected ahead of user arguments.
type Params[S any] struct {
	// State reads the current committed state.
	State func() S

	// Actions is the live dispatch namespace, bound by reference so that
	// actions invoking other actions observe the final table. Invocations
	// made through it queue behind the active one; never Wait on them from
	// inside an action body.
	Actions Invoker[S]
}

// Invoker dispatches named actions.
type Invoker[S any] interface {
	// Invoke enqueues one invocation and returns its settlement handle.
	Invoke(ctx context.Context, name string, args ...any) *Pending[S]

	// Call is the blocking form of Invoke: it waits for the invocation to
	// settle and returns the final committed state.
	Call(ctx context.Context, name string, args ...any) (S, error)

	// Names lists the registered action names in sorted order.
	Names() []string
}

// Subscriber receives every committed state, synchronously, in commit
// order. It is called once per commit, so a failed invocation that
// committed states before its failure point still notifies for each of
// them; an invocation that fails before committing anything does not
// notify at all.
type Subscriber[S any] func(state S, actions Invoker[S])

// Store is the public surface of the state container.
type Store[S any] interface {
	Invoker[S]

	// State returns the current committed state.
	State() S

	// SetMiddleware replaces the registered middleware list wholesale.
	SetMiddleware(entries []Middleware[S])

	// EnableLogging turns on the per-call structured log line.
	EnableLogging()

	// DisableLogging turns the per-call log line off.
	DisableLogging()

	// IncludeStateInLogs controls whether log lines carry pre/post state
	// snapshots. It has no effect while logging is disabled.
	IncludeStateInLogs(include bool)
}

// Names returns the table's action names in sorted order.
func (t Table[S]) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateTable checks a table for construction-time mistakes.
func ValidateTable[S any](t Table[S]) error {
	if len(t) == 0 {
		return errors.New("action table must have at least one action")
	}
	for name, fn := range t {
		if name == "" {
			return errors.New("action name is required")
		}
		if fn == nil {
			return fmt.Errorf("action %q has nil function", name)
		}
	}
	return nil
}

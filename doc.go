// Package stator provides a serialized, single-writer state container for Go.
//
// Stator holds one application state value and replaces it through named
// "actions": user-supplied functions that may produce their next state
// directly, after blocking work, or as a lazy sequence of intermediate
// states. However an action produces its states, the engine applies them
// through one serialized commit path; no two invocations ever interleave.
//
// # Core Concepts
//
// The stator programming model is intentionally small:
//
//  1. Store
//  2. Table / ActionFunc
//  3. Result
//  4. Middleware
//  5. Observer
//
// # Store
//
// The Store owns the state cell and the execution queue. It provides APIs
// to:
//   - invoke actions (blocking or via a settlement handle)
//   - read the current committed state
//   - replace the middleware list
//   - toggle per-call structured logging
//
// Invocations are admitted strictly one at a time, in arrival order: an
// invocation never starts before every earlier one has fully settled, and
// its own commits are applied in the order produced. The per-call handle
// settles exactly once, with the final committed state or with the failure
// that rejected the call. State already committed when a failure occurs
// stays in effect; each commit is an independently meaningful snapshot.
//
// # Table and ActionFunc
//
// A Table maps action names to functions. Each action receives the
// injected Params bundle (a state accessor and the live dispatch
// namespace) ahead of its caller-supplied arguments:
//
//	table := stator.NewTable[Counter]().
//	    Action("increment", func(ctx context.Context, p stator.Params[Counter], args ...any) (stator.Result[Counter], error) {
//	        n := 1
//	        if len(args) > 0 {
//	            n = args[0].(int)
//	        }
//	        return stator.Value(Counter{Count: p.State().Count + n}), nil
//	    }).
//	    Build()
//
// Because invocations are serialized, p.State() always returns the latest
// committed value, even between the intermediate commits of a Sequence.
//
// # Result
//
// Result is a closed set of shapes covering how actions produce state:
//
//   - stator.Value(s): one state, committed synchronously
//   - stator.Deferred(fn): one state, resolved by blocking work first
//   - stator.Sequence(seq): many states; each yield commits and notifies
//     before the iterator body resumes
//   - stator.Emitter(fn): many states with arbitrary blocking between
//     emits
//
// All four shapes are equivalent to the engine: classify, drain, commit.
// An action that produces no state at all fails with
// ErrInvalidActionResult.
//
// # Middleware
//
// Middleware entries run around every invocation: pre hooks before the
// action body, post hooks after the final commit. The list is replaced
// wholesale via Store.SetMiddleware and entries run in registration order
// with the call's name, arguments and their own Meta mapping. Post hooks
// also run after failed calls, with the triggering error in the context.
//
// # Observer
//
// Observers receive the invocation life cycle (start, commit, completed,
// failed) for logging, metrics and journaling. The package ships
// NewLoggingObserver (log/slog), BasicMetrics, and NewCompositeObserver;
// the journal package adds a SQLite-backed commit journal and the otel
// package an OpenTelemetry bridge.
//
// # Summary
//
// Stator's goal is a state container that feels like Go: one writer, a
// strict FIFO of invocations, explicit errors, and observability hooks
// that stay out of the commit path's semantics.
//
// For runnable programs, see the /examples directory.
package stator

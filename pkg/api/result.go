package api

import (
	"context"
	"iter"
)

// Sink accepts one state to commit. The engine's sink replaces the state
// cell and notifies the subscriber before returning, so producers resume
// only after their previous value is fully applied.
type Sink[S any] func(S) error

// Result is the value produced by one action invocation: an ordered,
// possibly lazy sequence of states to commit. The set of shapes is closed;
// use Value, Deferred, Sequence or Emitter to build one.
type Result[S any] interface {
	// Produce drains the result, handing each state to commit in order.
	// A non-nil return fails the invocation; states already committed
	// stay in effect.
	Produce(ctx context.Context, commit Sink[S]) error
}

// Value returns a Result that commits s as the single event, synchronously.
func Value[S any](s S) Result[S] {
	return valueResult[S]{state: s}
}

type valueResult[S any] struct{ state S }

func (r valueResult[S]) Produce(_ context.Context, commit Sink[S]) error {
	return commit(r.state)
}

// Deferred returns a Result whose single event is produced by fn. The
// engine resolves fn while holding the active slot, so fn may block on
// I/O; its error fails the invocation with nothing committed.
func Deferred[S any](fn func(ctx context.Context) (S, error)) Result[S] {
	return deferredResult[S]{fn: fn}
}

type deferredResult[S any] struct {
	fn func(ctx context.Context) (S, error)
}

func (r deferredResult[S]) Produce(ctx context.Context, commit Sink[S]) error {
	s, err := r.fn(ctx)
	if err != nil {
		return err
	}
	return commit(s)
}

// Sequence returns a Result that commits every state the iterator yields.
// Each yielded state is committed, and the subscriber notified, before the
// iterator body resumes; the body may therefore read the just-committed
// value through Params.State. Yielding a non-nil error fails the
// invocation at that step.
func Sequence[S any](seq iter.Seq2[S, error]) Result[S] {
	return sequenceResult[S]{seq: seq}
}

type sequenceResult[S any] struct{ seq iter.Seq2[S, error] }

func (r sequenceResult[S]) Produce(ctx context.Context, commit Sink[S]) error {
	var failure error
	r.seq(func(s S, err error) bool {
		if err != nil {
			failure = err
			return false
		}
		if err := ctx.Err(); err != nil {
			failure = err
			return false
		}
		if err := commit(s); err != nil {
			failure = err
			return false
		}
		return true
	})
	return failure
}

// Emitter returns a Result driven by fn, which may block arbitrarily
// between emits. Each emit commits one state; fn returning a non-nil
// error fails the invocation. A final state can be emitted immediately
// before returning.
func Emitter[S any](fn func(ctx context.Context, emit Sink[S]) error) Result[S] {
	return emitterResult[S]{fn: fn}
}

type emitterResult[S any] struct {
	fn func(ctx context.Context, emit Sink[S]) error
}

func (r emitterResult[S]) Produce(ctx context.Context, commit Sink[S]) error {
	return r.fn(ctx, commit)
}

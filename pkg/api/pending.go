package api

import "context"

// Pending is the settlement handle for one enqueued invocation. The engine
// settles each handle exactly once, with either the final committed state
// or the failure that rejected the call.
type Pending[S any] struct {
	done  chan struct{}
	state S
	err   error
}

// NewPending creates an unsettled handle. Used by the engine; application
// code receives handles from Invoker.Invoke.
func NewPending[S any]() *Pending[S] {
	return &Pending[S]{done: make(chan struct{})}
}

// Settle resolves the handle. Settling twice panics.
func (p *Pending[S]) Settle(state S, err error) {
	p.state = state
	p.err = err
	close(p.done)
}

// Done is closed once the invocation has settled.
func (p *Pending[S]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the invocation settles or ctx is cancelled. The
// invocation itself is not cancelled by ctx; it will settle on its own and
// the result can be read by a later Wait.
//
// Never call Wait from inside an action body: the invocation waited on is
// queued behind the active one and cannot start until it finishes.
func (p *Pending[S]) Wait(ctx context.Context) (S, error) {
	select {
	case <-p.done:
		return p.state, p.err
	case <-ctx.Done():
		var zero S
		return zero, ctx.Err()
	}
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/statorhq/stator/pkg/api"
)

// Store is the single-writer state container. The state cell is written
// exclusively by the commit step of the active queue entry; reads go
// through State, which returns the latest fully committed value.
type Store[S any] struct {
	table      api.Table[S]
	subscriber api.Subscriber[S]
	observer   api.Observer[S]
	logger     *slog.Logger

	logCalls atomic.Bool
	logState atomic.Bool

	mu         sync.RWMutex // guards state and middleware
	state      S
	middleware []api.Middleware[S]

	queue queue

	initialized bool
}

// Config describes how to construct a Store.
// Only used inside this package; external callers use stator.New.
type Config[S any] struct {
	Table      api.Table[S]
	Initial    func(api.Table[S]) S
	Subscriber api.Subscriber[S]
	Observer   api.Observer[S]
	Logger     *slog.Logger
	LogCalls   bool
	LogState   bool
}

// New validates the table, seeds the state cell from the initial producer
// and returns a ready Store.
func New[S any](cfg Config[S]) (*Store[S], error) {
	if err := api.ValidateTable(cfg.Table); err != nil {
		return nil, err
	}
	if cfg.Initial == nil {
		return nil, errors.New("initial state producer is required")
	}

	obs := cfg.Observer
	if obs == nil {
		obs = api.NoopObserver[S]{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store[S]{
		table:       cfg.Table,
		subscriber:  cfg.Subscriber,
		observer:    obs,
		logger:      logger,
		initialized: true,
	}
	s.logCalls.Store(cfg.LogCalls)
	s.logState.Store(cfg.LogState)

	// The producer may read the table, e.g. to seed derived values.
	s.state = cfg.Initial(cfg.Table)
	return s, nil
}

var _ api.Store[int] = (*Store[int])(nil)

// State returns the current committed state.
func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Names lists the registered action names in sorted order.
func (s *Store[S]) Names() []string {
	return s.table.Names()
}

// SetMiddleware replaces the registered middleware list wholesale. Calls
// already active keep the list they snapshotted at promotion time.
func (s *Store[S]) SetMiddleware(entries []api.Middleware[S]) {
	list := make([]api.Middleware[S], len(entries))
	copy(list, entries)

	s.mu.Lock()
	s.middleware = list
	s.mu.Unlock()
}

// EnableLogging turns on the per-call structured log line.
func (s *Store[S]) EnableLogging() { s.logCalls.Store(true) }

// DisableLogging turns the per-call log line off.
func (s *Store[S]) DisableLogging() { s.logCalls.Store(false) }

// IncludeStateInLogs controls whether log lines carry pre/post state
// snapshots.
func (s *Store[S]) IncludeStateInLogs(include bool) { s.logState.Store(include) }

// Invoke enqueues one invocation and returns its settlement handle. The
// handle settles exactly once: with the final committed state, or with the
// failure that rejected the call. Invocations run strictly one at a time,
// in enqueue order.
func (s *Store[S]) Invoke(ctx context.Context, name string, args ...any) *api.Pending[S] {
	p := api.NewPending[S]()

	if s == nil || !s.initialized {
		var zero S
		p.Settle(zero, api.ErrNotInitialized)
		return p
	}
	fn, ok := s.table[name]
	if !ok {
		var zero S
		p.Settle(zero, &api.UnknownActionError{Action: name})
		return p
	}

	call := api.CallInfo{ID: uuid.NewString(), Action: name, Args: args}
	s.queue.enqueue(func() {
		final, err := s.run(ctx, call, fn)
		p.Settle(final, err)
	})
	return p
}

// Call is the blocking form of Invoke.
func (s *Store[S]) Call(ctx context.Context, name string, args ...any) (S, error) {
	return s.Invoke(ctx, name, args...).Wait(ctx)
}

// run performs one invocation's full life cycle: pre middleware, action
// body, drain, commits, post middleware, log line and observer callbacks.
func (s *Store[S]) run(ctx context.Context, call api.CallInfo, fn api.ActionFunc[S]) (S, error) {
	start := time.Now()
	mws := s.middlewareSnapshot()

	s.observer.OnActionStart(ctx, call)
	s.logCall(ctx, slog.LevelDebug, "action_start", call, "state_before", nil)

	commits := 0
	err := s.execute(ctx, call, fn, mws, &commits)

	d := time.Since(start)
	if err != nil {
		// Post hooks still observe failed calls; their own errors never
		// mask the original failure.
		if perr := s.runPhase(api.PhasePost, mws, call, err); perr != nil {
			s.logger.WarnContext(ctx, "post_middleware_failed",
				slog.String("call_id", call.ID),
				slog.String("action", call.Action),
				slog.Any("error", perr),
			)
		}
		s.observer.OnActionFailed(ctx, call, err, d)
		s.logCall(ctx, slog.LevelError, "action_failed", call, "state_after", err)

		var zero S
		return zero, err
	}

	if perr := s.runPhase(api.PhasePost, mws, call, nil); perr != nil {
		// Committed state stays in place; the call itself fails.
		s.observer.OnActionFailed(ctx, call, perr, time.Since(start))
		s.logCall(ctx, slog.LevelError, "action_failed", call, "state_after", perr)

		var zero S
		return zero, perr
	}

	final := s.State()
	s.observer.OnActionCompleted(ctx, call, final, time.Since(start))
	s.logCall(ctx, slog.LevelInfo, "action_completed", call, "state_after", nil)
	return final, nil
}

// execute runs pre middleware, the action body, and the drain loop.
// commits counts applied events so run can enforce the at-least-one rule.
func (s *Store[S]) execute(ctx context.Context, call api.CallInfo, fn api.ActionFunc[S], mws []api.Middleware[S], commits *int) (err error) {
	// Action bodies and result producers are user code running on the
	// queue goroutine; a panic must reject the call instead of killing
	// the process, or the caller's Wait would hang forever.
	defer func() {
		if r := recover(); r != nil {
			err = &api.ActionError{Action: call.Action, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := s.runPhase(api.PhasePre, mws, call, nil); err != nil {
		return err
	}

	res, aerr := fn(ctx, api.Params[S]{State: s.State, Actions: s}, call.Args...)
	if aerr != nil {
		return &api.ActionError{Action: call.Action, Err: aerr}
	}
	if res == nil {
		return api.ErrInvalidActionResult
	}

	derr := res.Produce(ctx, func(next S) error {
		s.commit(ctx, call, next, commits)
		return nil
	})
	if derr != nil {
		return &api.ActionError{Action: call.Action, Err: derr}
	}
	if *commits == 0 {
		return api.ErrInvalidActionResult
	}
	return nil
}

// commit replaces the state cell and notifies observer and subscriber.
// It returns only after both have seen the new value, so a producer
// resuming afterwards reads the committed state.
func (s *Store[S]) commit(ctx context.Context, call api.CallInfo, next S, commits *int) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	*commits++
	s.observer.OnCommit(ctx, call, *commits, next)
	if s.subscriber != nil {
		s.subscriber(next, s)
	}
}

// runPhase invokes the matching hooks in registration order. cause is the
// triggering failure for post hooks of a failed call.
func (s *Store[S]) runPhase(phase api.Phase, mws []api.Middleware[S], call api.CallInfo, cause error) error {
	idx := 0
	for i := range mws {
		if mws[i].Phase != phase {
			continue
		}
		mc := api.MiddlewareContext[S]{
			State:  s.State,
			Action: call.Action,
			Args:   call.Args,
			Meta:   mws[i].Meta,
			Err:    cause,
		}
		if err := mws[i].Fn(mc); err != nil {
			return &api.MiddlewareError{Phase: phase, Index: idx, Err: err}
		}
		idx++
	}
	return nil
}

func (s *Store[S]) middlewareSnapshot() []api.Middleware[S] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.middleware
}

// logCall emits the per-call structured log line when logging is enabled.
// stateKey names the optional snapshot attribute for this point of the
// life cycle.
func (s *Store[S]) logCall(ctx context.Context, level slog.Level, msg string, call api.CallInfo, stateKey string, err error) {
	if !s.logCalls.Load() {
		return
	}
	attrs := []any{
		slog.String("call_id", call.ID),
		slog.String("action", call.Action),
		slog.Any("args", call.Args),
	}
	if s.logState.Load() {
		attrs = append(attrs, slog.Any(stateKey, s.State()))
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	s.logger.Log(ctx, level, msg, attrs...)
}

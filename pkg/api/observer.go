package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// CallInfo identifies one invocation for observers.
type CallInfo struct {
	// ID is unique per invocation.
	ID string

	// Action is the invoked action's name.
	Action string

	// Args are the caller-supplied arguments.
	Args []any
}

// Observer receives callbacks from the store for logging and metrics.
//
// Implementations should be fast and non-blocking; commits are delivered
// synchronously from the active entry's drain loop, so heavy work delays
// every queued invocation behind it.
type Observer[S any] interface {
	// OnActionStart is called once per invocation, after it is promoted to
	// active and before pre middleware runs.
	OnActionStart(ctx context.Context, call CallInfo)

	// OnCommit is called after each state replacement, before the next
	// event of the sequence is requested. seq is 1-based within the call.
	OnCommit(ctx context.Context, call CallInfo, seq int, state S)

	// OnActionCompleted is called when an invocation settles successfully,
	// with the final committed state.
	OnActionCompleted(ctx context.Context, call CallInfo, state S, duration time.Duration)

	// OnActionFailed is called when an invocation settles with an error.
	// Commits applied before the failure point remain in effect.
	OnActionFailed(ctx context.Context, call CallInfo, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver[S any] struct{}

func (NoopObserver[S]) OnActionStart(ctx context.Context, call CallInfo)              {}
func (NoopObserver[S]) OnCommit(ctx context.Context, call CallInfo, seq int, state S) {}
func (NoopObserver[S]) OnActionCompleted(ctx context.Context, call CallInfo, state S, d time.Duration) {
}
func (NoopObserver[S]) OnActionFailed(ctx context.Context, call CallInfo, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver[S any] struct {
	observers []Observer[S]
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver[S any](obs ...Observer[S]) Observer[S] {
	filtered := make([]Observer[S], 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver[S]{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver[S]{observers: filtered}
}

func (c *CompositeObserver[S]) OnActionStart(ctx context.Context, call CallInfo) {
	for _, o := range c.observers {
		o.OnActionStart(ctx, call)
	}
}

func (c *CompositeObserver[S]) OnCommit(ctx context.Context, call CallInfo, seq int, state S) {
	for _, o := range c.observers {
		o.OnCommit(ctx, call, seq, state)
	}
}

func (c *CompositeObserver[S]) OnActionCompleted(ctx context.Context, call CallInfo, state S, d time.Duration) {
	for _, o := range c.observers {
		o.OnActionCompleted(ctx, call, state, d)
	}
}

func (c *CompositeObserver[S]) OnActionFailed(ctx context.Context, call CallInfo, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnActionFailed(ctx, call, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver[S any] struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs invocation lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver[S any](logger *slog.Logger) Observer[S] {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver[S]{Logger: logger}
}

func (o *LoggingObserver[S]) OnActionStart(ctx context.Context, call CallInfo) {
	o.Logger.DebugContext(ctx, "action_start",
		slog.String("call_id", call.ID),
		slog.String("action", call.Action),
		slog.Any("args", call.Args),
	)
}

func (o *LoggingObserver[S]) OnCommit(ctx context.Context, call CallInfo, seq int, state S) {
	o.Logger.DebugContext(ctx, "commit",
		slog.String("call_id", call.ID),
		slog.String("action", call.Action),
		slog.Int("seq", seq),
	)
}

func (o *LoggingObserver[S]) OnActionCompleted(ctx context.Context, call CallInfo, state S, d time.Duration) {
	o.Logger.InfoContext(ctx, "action_completed",
		slog.String("call_id", call.ID),
		slog.String("action", call.Action),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver[S]) OnActionFailed(ctx context.Context, call CallInfo, err error, d time.Duration) {
	o.Logger.ErrorContext(ctx, "action_failed",
		slog.String("call_id", call.ID),
		slog.String("action", call.Action),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate call durations.
// It implements Observer, and can be combined with other observers via
// NewCompositeObserver.
type BasicMetrics[S any] struct {
	NoopObserver[S]

	actionsStarted   atomic.Int64
	actionsCompleted atomic.Int64
	actionsFailed    atomic.Int64
	commits          atomic.Int64
	totalDuration    atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	ActionsStarted   int64
	ActionsCompleted int64
	ActionsFailed    int64
	PendingActions   int64

	Commits         int64
	AvgCallDuration time.Duration
}

func (m *BasicMetrics[S]) OnActionStart(ctx context.Context, call CallInfo) {
	m.actionsStarted.Add(1)
}

func (m *BasicMetrics[S]) OnCommit(ctx context.Context, call CallInfo, seq int, state S) {
	m.commits.Add(1)
}

func (m *BasicMetrics[S]) OnActionCompleted(ctx context.Context, call CallInfo, state S, d time.Duration) {
	m.actionsCompleted.Add(1)
	m.totalDuration.Add(d.Nanoseconds())
}

func (m *BasicMetrics[S]) OnActionFailed(ctx context.Context, call CallInfo, err error, d time.Duration) {
	m.actionsFailed.Add(1)
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics[S]) Snapshot() BasicMetricsSnapshot {
	started := m.actionsStarted.Load()
	completed := m.actionsCompleted.Load()
	failed := m.actionsFailed.Load()
	totalNs := m.totalDuration.Load()

	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(totalNs / completed)
	}

	return BasicMetricsSnapshot{
		ActionsStarted:   started,
		ActionsCompleted: completed,
		ActionsFailed:    failed,
		PendingActions:   started - completed - failed,
		Commits:          m.commits.Load(),
		AvgCallDuration:  avg,
	}
}

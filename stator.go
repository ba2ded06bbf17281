package stator

import (
	"context"
	"iter"
	"log/slog"

	"github.com/statorhq/stator/internal/engine"
	"github.com/statorhq/stator/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Store[S any]                = api.Store[S]
	Table[S any]                = api.Table[S]
	ActionFunc[S any]           = api.ActionFunc[S]
	Params[S any]               = api.Params[S]
	Invoker[S any]              = api.Invoker[S]
	Subscriber[S any]           = api.Subscriber[S]
	Result[S any]               = api.Result[S]
	Sink[S any]                 = api.Sink[S]
	Pending[S any]              = api.Pending[S]
	Middleware[S any]           = api.Middleware[S]
	MiddlewareFunc[S any]       = api.MiddlewareFunc[S]
	MiddlewareContext[S any]    = api.MiddlewareContext[S]
	Phase                       = api.Phase
	Observer[S any]             = api.Observer[S]
	NoopObserver[S any]         = api.NoopObserver[S]
	LoggingObserver[S any]      = api.LoggingObserver[S]
	CompositeObserver[S any]    = api.CompositeObserver[S]
	BasicMetrics[S any]         = api.BasicMetrics[S]
	BasicMetricsSnapshot        = api.BasicMetricsSnapshot
	CallInfo                    = api.CallInfo
	UnknownActionError          = api.UnknownActionError
	ActionError                 = api.ActionError
	MiddlewareError             = api.MiddlewareError
)

// Re-export phases and sentinel errors for convenience.

const (
	PhasePre  = api.PhasePre
	PhasePost = api.PhasePost
)

var (
	ErrNotInitialized      = api.ErrNotInitialized
	ErrInvalidActionResult = api.ErrInvalidActionResult
)

// Option configures a Store created by New.
type Option[S any] func(*engine.Config[S])

// WithObserver attaches an Observer to the store. Combine several with
// NewCompositeObserver.
func WithObserver[S any](obs Observer[S]) Option[S] {
	return func(cfg *engine.Config[S]) { cfg.Observer = obs }
}

// WithLogger sets the slog.Logger used for the per-call log line.
// If unset, slog.Default() is used.
func WithLogger[S any](logger *slog.Logger) Option[S] {
	return func(cfg *engine.Config[S]) { cfg.Logger = logger }
}

// WithLogging sets the initial state of the per-call log toggle.
// It can be flipped at runtime via Store.EnableLogging / DisableLogging.
func WithLogging[S any](enabled bool) Option[S] {
	return func(cfg *engine.Config[S]) { cfg.LogCalls = enabled }
}

// WithStateInLogs sets the initial state of the snapshot toggle; see
// Store.IncludeStateInLogs.
func WithStateInLogs[S any](enabled bool) Option[S] {
	return func(cfg *engine.Config[S]) { cfg.LogState = enabled }
}

// New builds a Store from an action table, an initial-state producer and a
// subscriber. The producer receives the validated table and its result
// seeds the state cell. The subscriber may be nil; when set it is called
// synchronously once per commit.
func New[S any](table Table[S], initial func(Table[S]) S, subscriber Subscriber[S], opts ...Option[S]) (Store[S], error) {
	cfg := engine.Config[S]{
		Table:      table,
		Initial:    initial,
		Subscriber: subscriber,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	st, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Result constructors, one per supported action return shape.
// These forward to pkg/api; see the api package for drain semantics.

// Value commits s as the single event, synchronously.
func Value[S any](s S) Result[S] { return api.Value(s) }

// Deferred resolves fn while holding the active slot and commits its
// result as the single event.
func Deferred[S any](fn func(ctx context.Context) (S, error)) Result[S] {
	return api.Deferred(fn)
}

// Sequence commits every state the iterator yields, applying each one
// before the iterator body resumes.
func Sequence[S any](seq iter.Seq2[S, error]) Result[S] { return api.Sequence(seq) }

// Emitter commits every state fn emits; fn may block between emits.
func Emitter[S any](fn func(ctx context.Context, emit Sink[S]) error) Result[S] {
	return api.Emitter(fn)
}

// Observer helpers, re-exported from pkg/api.

// NewLoggingObserver creates an Observer that logs invocation lifecycle
// events via slog.
func NewLoggingObserver[S any](logger *slog.Logger) Observer[S] {
	return api.NewLoggingObserver[S](logger)
}

// NewCompositeObserver fans events out to each non-nil observer.
func NewCompositeObserver[S any](obs ...Observer[S]) Observer[S] {
	return api.NewCompositeObserver(obs...)
}

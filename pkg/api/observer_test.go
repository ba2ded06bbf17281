package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type countingObserver struct {
	NoopObserver[int]
	starts, commits, completed, failed int
}

func (c *countingObserver) OnActionStart(ctx context.Context, call CallInfo) { c.starts++ }
func (c *countingObserver) OnCommit(ctx context.Context, call CallInfo, seq int, state int) {
	c.commits++
}
func (c *countingObserver) OnActionCompleted(ctx context.Context, call CallInfo, state int, d time.Duration) {
	c.completed++
}
func (c *countingObserver) OnActionFailed(ctx context.Context, call CallInfo, err error, d time.Duration) {
	c.failed++
}

func TestCompositeObserverFansOut(t *testing.T) {
	a := &countingObserver{}
	b := &countingObserver{}
	obs := NewCompositeObserver[int](a, nil, b)

	ctx := context.Background()
	call := CallInfo{ID: "c1", Action: "step"}
	obs.OnActionStart(ctx, call)
	obs.OnCommit(ctx, call, 1, 42)
	obs.OnActionCompleted(ctx, call, 42, time.Millisecond)
	obs.OnActionFailed(ctx, call, errors.New("boom"), time.Millisecond)

	for _, o := range []*countingObserver{a, b} {
		if o.starts != 1 || o.commits != 1 || o.completed != 1 || o.failed != 1 {
			t.Fatalf("observer missed events: %+v", o)
		}
	}
}

func TestCompositeObserverCollapses(t *testing.T) {
	if _, ok := NewCompositeObserver[int]().(NoopObserver[int]); !ok {
		t.Fatal("empty composite should collapse to NoopObserver")
	}
	single := &countingObserver{}
	if got := NewCompositeObserver[int](single); got != Observer[int](single) {
		t.Fatal("single-observer composite should return the observer itself")
	}
}

func TestLoggingObserverWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := NewLoggingObserver[int](logger)

	ctx := context.Background()
	call := CallInfo{ID: "c1", Action: "step", Args: []any{7}}
	obs.OnActionStart(ctx, call)
	obs.OnCommit(ctx, call, 1, 42)
	obs.OnActionCompleted(ctx, call, 42, 5*time.Millisecond)
	obs.OnActionFailed(ctx, call, errors.New("boom"), time.Millisecond)

	out := buf.String()
	for _, want := range []string{"action_start", "commit", "action_completed", "action_failed", "step", "boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestBasicMetricsSnapshot(t *testing.T) {
	var m BasicMetrics[int]
	ctx := context.Background()
	call := CallInfo{ID: "c1", Action: "step"}

	for range 3 {
		m.OnActionStart(ctx, call)
	}
	m.OnCommit(ctx, call, 1, 1)
	m.OnCommit(ctx, call, 2, 2)
	m.OnActionCompleted(ctx, call, 2, 10*time.Millisecond)
	m.OnActionCompleted(ctx, call, 2, 20*time.Millisecond)
	m.OnActionFailed(ctx, call, errors.New("boom"), time.Millisecond)

	snap := m.Snapshot()
	if snap.ActionsStarted != 3 || snap.ActionsCompleted != 2 || snap.ActionsFailed != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.PendingActions != 0 {
		t.Fatalf("pending = %d, want 0", snap.PendingActions)
	}
	if snap.Commits != 2 {
		t.Fatalf("commits = %d, want 2", snap.Commits)
	}
	if snap.AvgCallDuration != 15*time.Millisecond {
		t.Fatalf("avg = %v, want 15ms", snap.AvgCallDuration)
	}
}

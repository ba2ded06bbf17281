package api

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when an action is invoked on a store that
// was not built with New.
var ErrNotInitialized = errors.New("stator: store not initialized")

// ErrInvalidActionResult is returned when an action produces no state: a
// nil Result, or a Sequence/Emitter that finishes without a single commit.
var ErrInvalidActionResult = errors.New("stator: action produced no state")

// UnknownActionError reports a dispatch for a name missing from the table.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("stator: unknown action: %s", e.Action)
}

// ActionError wraps a failure raised by the action body or while draining
// its result.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("stator: action %s failed: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// MiddlewareError wraps a failure raised by a pre or post hook.
type MiddlewareError struct {
	Phase Phase
	Index int // position among the hooks of that phase, 0-based
	Err   error
}

func (e *MiddlewareError) Error() string {
	return fmt.Sprintf("stator: %s middleware %d failed: %v", e.Phase, e.Index, e.Err)
}

func (e *MiddlewareError) Unwrap() error { return e.Err }

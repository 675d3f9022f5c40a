// Package runtime drives schedules of codelet sequences on worker threads:
// the lifecycle state machine, the sequence and schedule executors, the
// worker fleet and the runtime front-end with its control mailbox.
package runtime

import (
	"fmt"

	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
)

// State is the lifecycle state of a codelet.
type State int

const (
	// Inactive: not started. The codelet can be started.
	Inactive State = iota

	// Started: the codelet can be stepped, paused or stopped.
	Started

	// Paused: stepping is suspended. The codelet can be resumed or stopped.
	Paused

	// Error: a transition failed. No further transition is admitted.
	Error
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "Inactive"
	case Started:
		return "Started"
	case Paused:
		return "Paused"
	default:
		return "Error"
	}
}

// Next returns the state after a successful transition, or false when the
// request is not admitted in this state.
func (s State) Next(request codelet.Transition) (State, bool) {
	switch {
	case s == Inactive && request == codelet.Start:
		return Started, true
	case s == Started && request == codelet.Step:
		return Started, true
	case s == Started && request == codelet.Pause:
		return Paused, true
	case s == Started && request == codelet.Stop:
		return Inactive, true
	case s == Paused && request == codelet.Resume:
		return Started, true
	case s == Paused && request == codelet.Stop:
		return Inactive, true
	default:
		return s, false
	}
}

// InvalidTransitionError reports a transition request which the current
// state does not admit.
type InvalidTransitionError struct {
	State      State
	Transition codelet.Transition
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.State, e.Transition)
}

// ExecutionFailureError reports a transition whose execution failed.
type ExecutionFailureError struct {
	Transition codelet.Transition
	Err        error
}

func (e *ExecutionFailureError) Error() string {
	return fmt.Sprintf("execution failed [%s]: %v", e.Transition, e.Err)
}

func (e *ExecutionFailureError) Unwrap() error { return e.Err }

// StateMachine oversees correct lifecycle transitions of the wrapped
// Lifecycle. A failed transition moves the machine into the Error state,
// from which no transition succeeds.
type StateMachine struct {
	inner codelet.Lifecycle
	state State
}

func NewStateMachine(inner codelet.Lifecycle) *StateMachine {
	return &StateMachine{inner: inner, state: Inactive}
}

func (m *StateMachine) State() State { return m.state }

// IsValidRequest reports whether the current state admits the transition.
func (m *StateMachine) IsValidRequest(request codelet.Transition) bool {
	_, ok := m.state.Next(request)
	return ok
}

// Transition applies one lifecycle transition to the wrapped Lifecycle.
func (m *StateMachine) Transition(transition codelet.Transition) (core.DefaultStatus, error) {
	next, ok := m.state.Next(transition)
	if !ok {
		return core.Skipped, &InvalidTransitionError{State: m.state, Transition: transition}
	}

	status, err := m.inner.Cycle(transition)
	if err != nil {
		m.state = Error
		return core.Skipped, &ExecutionFailureError{Transition: transition, Err: err}
	}

	m.state = next
	return status, nil
}

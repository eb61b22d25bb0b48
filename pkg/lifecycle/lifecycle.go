package lifecycle

import (
	"context"
	"time"
)

// HostModule is a component whose lifetime follows the host application.
type HostModule interface {
	// Name identifies the module to the host.
	Name() string

	// Initialize is called once the host runtime is ready.
	Initialize(ctx context.Context) error

	// Destroy is called when the host runtime is torn down.
	Destroy(ctx context.Context) error
}

// State represents the lifecycle state of a component.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Manager manages the lifecycle state machine for a component.
type Manager interface {
	// State returns the current lifecycle state.
	State() State

	// CanStart returns true if the component may be started.
	CanStart() bool

	// CanStop returns true if the component may be stopped.
	CanStop() bool

	// TransitionTo attempts to transition to a new state.
	// Returns an error if the transition is not valid.
	TransitionTo(newState State, reason string) error

	// WaitWithTimeout waits for all workers to finish with a timeout.
	// Returns ErrShutdownTimeout if the timeout expires.
	WaitWithTimeout(timeout time.Duration) error

	// AddWorker increments the worker count.
	AddWorker()

	// WorkerDone decrements the worker count.
	WorkerDone()
}

package gateway

import "time"

// State is the lifecycle state of a guarded dependency handle.
//
// The zero value is StateUnconfigured so that an unwired handle behaves as
// an absent dependency rather than panicking.
type State int

const (
	// StateUnconfigured means no connection settings were provided.
	// The handle never attempts a connection. Permanent.
	StateUnconfigured State = iota

	// StateConnecting means the bounded retry loop is in progress.
	StateConnecting

	// StateAvailable means the handle is bound to a live client.
	StateAvailable

	// StateUnavailable means connection attempts were exhausted or a runtime
	// error demoted the handle. Permanent for the process lifetime.
	StateUnavailable
)

// String returns the lowercase name of the state, used in log fields,
// metrics, and health responses.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConnecting:
		return "connecting"
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Transition records a single handle state change.
type Transition struct {
	// Dependency is the handle name (e.g. "redis", "nats").
	Dependency string

	// From and To are the states before and after the change.
	From State
	To   State

	// Err is the triggering error for demotions, nil otherwise.
	Err error

	// At is when the transition occurred.
	At time.Time
}

// TransitionFunc observes handle state changes. Observers are invoked
// synchronously in registration order, outside the handle's lock; they must
// not block for extended periods.
type TransitionFunc func(Transition)

// Reporter is the read-only view of a guarded handle used by health
// aggregation. All Handle instantiations implement it regardless of client
// type.
type Reporter interface {
	// Name returns the dependency name.
	Name() string

	// State returns the current lifecycle state.
	State() State

	// LastError returns the most recent connection or runtime error,
	// or nil if none occurred.
	LastError() error
}

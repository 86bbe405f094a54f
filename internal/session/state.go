package session

import "habitat_payments/internal/domain/entities"

// State is the lifecycle position of a payment session. Exactly one is
// active at a time.
type State string

const (
	StateIdle            State = "idle"
	StateValidating      State = "validating"
	StateSubmitting      State = "submitting"
	StatePolling         State = "polling"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
	StateTimedOut        State = "timed_out"
	StateValidationError State = "validation_error"
)

func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether the session waits for an explicit user action.
// timed_out is not terminal: polling goes on behind the extended-wait copy.
func (s State) IsTerminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateValidationError:
		return true
	}
	return false
}

// awaitingOutcome reports whether an intent exists and is being watched.
func (s State) awaitingOutcome() bool {
	return s == StatePolling || s == StateTimedOut
}

// Snapshot is an immutable copy of the session, safe to hand to renderers.
type Snapshot struct {
	State         State
	IntentID      string
	Channel       entities.Channel
	ChannelLocked bool
	Form          Form
	FieldErrors   FieldErrors
	Confirmation  Confirmation
	FailureReason string
	ExtendedWait  bool
	Disclosure    string
}

// Transition is delivered to Params.OnTransition, in order, once per state
// change.
type Transition struct {
	From     State
	To       State
	Snapshot Snapshot
}

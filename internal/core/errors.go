package core

import (
	"errors"
	"fmt"

	"pocket-wellness/pkg"
)

var (
	// ErrNoPersona is returned when a chat operation runs before a persona
	// has been set on the conversation.
	ErrNoPersona = errors.New("no persona set")

	// ErrNotInitialized is returned when SetPersona is called with a nil
	// persona context, i.e. before composition succeeded.
	ErrNotInitialized = errors.New("persona context not initialized")

	// ErrUnsupportedExercise is returned for exercise tags outside the
	// closed enum. With a well-behaved caller this never fires.
	ErrUnsupportedExercise = errors.New("unsupported exercise")

	// ErrSessionNotFound is returned by the registry for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError reports incomplete or invalid user-supplied fields. The
// caller re-prompts the user; no state transition happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CompletionFailure wraps an error from the external completion function.
// It is retryable: the user turn that triggered the call stays committed in
// the transcript, so a retry does not duplicate it.
type CompletionFailure struct {
	Err error
}

func (e *CompletionFailure) Error() string {
	return fmt.Sprintf("completion failed: %v", e.Err)
}

func (e *CompletionFailure) Unwrap() error { return e.Err }

// PhaseError reports a UI event that is not legal in the session's current
// phase, e.g. sending a chat message during assessment.
type PhaseError struct {
	Phase pkg.SessionPhase
	Event string
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("cannot %s during %s phase", e.Event, e.Phase)
}

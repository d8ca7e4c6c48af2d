package core

import "errors"

var (
	// ErrSessionNotFound is returned when a session id was never issued or
	// has been purged.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when creating a session under an id that
	// is already in use.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionNotActive is returned when a session has already been
	// resolved or has expired; the original resolution is preserved.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrInvalidTransition is returned by the store when a terminal
	// transition is applied to a session that is not pending.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrVerificationFailed is returned when the proof verifier rejected
	// the submitted proof.
	ErrVerificationFailed = errors.New("proof verification failed")

	// ErrVerifierTimeout is returned when the proof verifier did not answer
	// within the configured window; distinct from a rejection so callers
	// know the proof was never checked.
	ErrVerifierTimeout = errors.New("proof verifier timed out")
)

package ports

import (
	"context"

	"github.com/verity-id/verity/core"
)

// TransitionPayload carries the terminal-state data applied together with a
// status transition.
type TransitionPayload struct {
	UserDID string // verified
	Error   string // failed
}

// SessionStore owns all session records. Create and Transition for a given
// session id are atomic with respect to each other; operations on distinct
// ids do not contend.
type SessionStore interface {
	// Create inserts a new pending session. Returns core.ErrSessionExists
	// if the id is already in use; existing entries are never overwritten.
	Create(ctx context.Context, session core.Session) error

	// Get returns the session for the id, or core.ErrSessionNotFound. A
	// pending session older than the store's TTL is reported with status
	// expired, never as stale pending.
	Get(ctx context.Context, sessionID string) (core.Session, error)

	// Transition applies a terminal status with its payload. Returns
	// core.ErrSessionNotFound if absent and core.ErrInvalidTransition if
	// the session is not currently pending (including lazily expired ones).
	Transition(ctx context.Context, sessionID string, status core.Status, payload TransitionPayload) error
}

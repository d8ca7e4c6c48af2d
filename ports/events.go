package ports

import (
	"context"

	"github.com/verity-id/verity/core"
)

// EventPublisher notifies other services about session lifecycle changes.
type EventPublisher interface {
	PublishChallengeIssued(ctx context.Context, sessionID string) error
	PublishSessionResolved(ctx context.Context, session core.Session) error
}

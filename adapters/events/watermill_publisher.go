package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/verity-id/verity/core"
	"github.com/verity-id/verity/ports"
)

const (
	// TopicChallengeIssued carries newly issued sign-in challenges.
	TopicChallengeIssued = "auth.challenge.issued"

	// TopicSessionResolved carries terminal session outcomes.
	TopicSessionResolved = "auth.session.resolved"
)

// ChallengeIssuedEvent announces a new pending session.
type ChallengeIssuedEvent struct {
	SessionID string `json:"session_id"`
}

// SessionResolvedEvent announces a terminal sign-in outcome.
type SessionResolvedEvent struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	UserDID   string `json:"user_did,omitempty"`
	Error     string `json:"error,omitempty"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishChallengeIssued publishes a challenge-issued event.
func (p *WatermillPublisher) PublishChallengeIssued(ctx context.Context, sessionID string) error {
	return p.publish(TopicChallengeIssued, sessionID, ChallengeIssuedEvent{SessionID: sessionID})
}

// PublishSessionResolved publishes a session-resolved event.
func (p *WatermillPublisher) PublishSessionResolved(ctx context.Context, session core.Session) error {
	return p.publish(TopicSessionResolved, session.ID, SessionResolvedEvent{
		SessionID: session.ID,
		Status:    string(session.Status),
		UserDID:   session.UserDID,
		Error:     session.Error,
	})
}

func (p *WatermillPublisher) publish(topic, id string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.publisher.Publish(topic, message.NewMessage(id, payload)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

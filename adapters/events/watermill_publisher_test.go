package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verity-id/verity/core"
)

func TestWatermillPublisher_SessionResolved(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, TopicSessionResolved)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubSub)
	session := core.Session{
		ID:      "s1",
		Status:  core.StatusVerified,
		UserDID: "did:example:123",
	}
	require.NoError(t, publisher.PublishSessionResolved(ctx, session))

	select {
	case msg := <-messages:
		var event SessionResolvedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, "s1", event.SessionID)
		assert.Equal(t, string(core.StatusVerified), event.Status)
		assert.Equal(t, "did:example:123", event.UserDID)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

func TestWatermillPublisher_ChallengeIssued(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, TopicChallengeIssued)
	require.NoError(t, err)

	publisher := NewWatermillPublisher(pubSub)
	require.NoError(t, publisher.PublishChallengeIssued(ctx, "s1"))

	select {
	case msg := <-messages:
		var event ChallengeIssuedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, "s1", event.SessionID)
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("no event received")
	}
}

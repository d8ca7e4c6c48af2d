package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/verity-id/verity/core"
	"github.com/verity-id/verity/ports"
)

// retention keeps resolved and expired sessions readable for a while after
// the verification window closes, so late callbacks get a precise error
// instead of "not found".
const retention = 10 * time.Minute

// RedisStore is a Redis implementation of the SessionStore interface.
// Per-key atomicity for Transition comes from optimistic locking with WATCH.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: "verity:session:",
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Create inserts a new pending session with SET NX so an existing entry is
// never overwritten.
func (s *RedisStore) Create(ctx context.Context, session core.Session) error {
	session.Status = core.StatusPending
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(session.ID), data, s.ttl+retention).Result()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return core.ErrSessionExists
	}
	return nil
}

// Get returns the session for the id, applying lazy expiry.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (core.Session, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.Session{}, core.ErrSessionNotFound
		}
		return core.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var session core.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return core.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	s.expire(&session)
	return session, nil
}

// Transition applies a terminal status under a WATCH-based check-and-set on
// the session key. A lost race means another caller resolved the session
// first, which surfaces as core.ErrInvalidTransition.
func (s *RedisStore) Transition(ctx context.Context, sessionID string, status core.Status, payload ports.TransitionPayload) error {
	if !status.Terminal() {
		return core.ErrInvalidTransition
	}

	key := s.key(sessionID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return core.ErrSessionNotFound
			}
			return fmt.Errorf("failed to load session: %w", err)
		}

		var session core.Session
		if err := json.Unmarshal([]byte(data), &session); err != nil {
			return fmt.Errorf("failed to unmarshal session: %w", err)
		}

		s.expire(&session)
		if session.Status != core.StatusPending {
			return core.ErrInvalidTransition
		}

		session.Status = status
		session.UserDID = payload.UserDID
		session.Error = payload.Error

		updated, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, retention)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// Concurrent resolution won the CAS; the session is no longer pending.
		return core.ErrInvalidTransition
	}
	return err
}

func (s *RedisStore) expire(session *core.Session) {
	if s.ttl > 0 && session.Status == core.StatusPending && time.Since(session.CreatedAt) > s.ttl {
		session.Status = core.StatusExpired
	}
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

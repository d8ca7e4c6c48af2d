package store

import (
	"context"
	"sync"
	"time"

	"github.com/verity-id/verity/core"
	"github.com/verity-id/verity/ports"
)

// MemoryStore is an in-memory implementation of the SessionStore interface.
// Each session gets its own entry with its own lock, so operations on
// distinct sessions never contend.
type MemoryStore struct {
	ttl       time.Duration
	retention time.Duration
	sessions  sync.Map // session id -> *entry
}

type entry struct {
	mu      sync.Mutex
	session core.Session
}

// NewMemoryStore creates a new in-memory store. Pending sessions older than
// ttl are reported as expired on access; ttl <= 0 disables expiry. Entries
// are purged retention after expiry, so a late callback first reads
// expired/resolved and only eventually not-found, matching the redis store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, retention: retention}
}

// Create inserts a new pending session, refusing to overwrite an existing id.
func (s *MemoryStore) Create(ctx context.Context, session core.Session) error {
	session.Status = core.StatusPending
	if _, loaded := s.sessions.LoadOrStore(session.ID, &entry{session: session}); loaded {
		return core.ErrSessionExists
	}
	if s.ttl > 0 {
		id := session.ID
		time.AfterFunc(s.ttl+s.retention, func() { s.sessions.Delete(id) })
	}
	return nil
}

// Get returns the session for the id, applying lazy expiry.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (core.Session, error) {
	v, ok := s.sessions.Load(sessionID)
	if !ok {
		return core.Session{}, core.ErrSessionNotFound
	}

	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()

	s.expire(&e.session)
	return e.session, nil
}

// Transition applies a terminal status to a pending session.
func (s *MemoryStore) Transition(ctx context.Context, sessionID string, status core.Status, payload ports.TransitionPayload) error {
	if !status.Terminal() {
		return core.ErrInvalidTransition
	}

	v, ok := s.sessions.Load(sessionID)
	if !ok {
		return core.ErrSessionNotFound
	}

	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()

	s.expire(&e.session)
	if e.session.Status != core.StatusPending {
		return core.ErrInvalidTransition
	}

	e.session.Status = status
	e.session.UserDID = payload.UserDID
	e.session.Error = payload.Error
	return nil
}

// expire flips a pending session past its TTL to expired. Caller holds the
// entry lock.
func (s *MemoryStore) expire(session *core.Session) {
	if s.ttl > 0 && session.Status == core.StatusPending && time.Since(session.CreatedAt) > s.ttl {
		session.Status = core.StatusExpired
	}
}

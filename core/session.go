package core

import (
	"time"

	"github.com/iden3/iden3comm/v2/protocol"
)

// Status is the lifecycle state of an authentication session.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusFailed   Status = "failed"
	StatusExpired  Status = "expired"
)

// Terminal reports whether no further transition is allowed from the status.
func (s Status) Terminal() bool {
	return s == StatusVerified || s == StatusFailed || s == StatusExpired
}

// Session correlates an issued authorization request with its eventual
// resolution. The request is immutable after creation; only Status, UserDID
// and Error change, and only through the store's Transition.
type Session struct {
	ID        string                               // correlation key, unique per attempt
	Request   protocol.AuthorizationRequestMessage // the issued challenge
	Status    Status
	CreatedAt time.Time
	UserDID   string // set when Status is verified
	Error     string // failure classification when Status is failed
}

// Identity is an authenticated identity reference returned to callers
// after a successful verification.
type Identity struct {
	DID string `json:"did"`
}

package ports

import (
	"context"
	"time"

	"github.com/iden3/iden3comm/v2/protocol"
	"github.com/verity-id/verity/core"
)

// VerifyOptions bounds the external verification call.
type VerifyOptions struct {
	// AcceptedStateTransitionDelay is how stale an on-chain identity state
	// may be and still be accepted, tolerating registry consistency lag.
	AcceptedStateTransitionDelay time.Duration
}

// ProofVerifier is the external capability that cryptographically checks a
// proof token against the challenge it answers. Key material lookup, schema
// resolution and identity state resolution are its concern, not ours; the
// token is treated as opaque on this side of the boundary.
type ProofVerifier interface {
	FullVerify(ctx context.Context, token string, request protocol.AuthorizationRequestMessage, opts VerifyOptions) (core.Identity, error)
}

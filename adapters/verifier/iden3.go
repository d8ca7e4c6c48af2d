package verifier

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	auth "github.com/iden3/go-iden3-auth/v2"
	"github.com/iden3/go-iden3-auth/v2/loaders"
	"github.com/iden3/go-iden3-auth/v2/pubsignals"
	"github.com/iden3/go-iden3-auth/v2/state"
	"github.com/iden3/iden3comm/v2/protocol"

	"github.com/verity-id/verity/core"
	"github.com/verity-id/verity/ports"
)

// Config wires the iden3 verifier to its collaborators: circuit
// verification keys on disk, an identity state contract on an EVM chain and
// an IPFS gateway for credential schema documents.
type Config struct {
	KeyDir        string
	EthRPCURL     string
	StateContract string
	ChainID       string // chain namespace, e.g. "polygon:mumbai"
	IPFSGateway   string
}

// Iden3Verifier adapts the go-iden3-auth verifier to the ProofVerifier
// port. It is long-lived: constructed once at startup and reused by every
// callback.
type Iden3Verifier struct {
	verifier *auth.Verifier
}

// NewIden3Verifier builds the verifier from its configuration.
func NewIden3Verifier(cfg Config) (*Iden3Verifier, error) {
	if !common.IsHexAddress(cfg.StateContract) {
		return nil, fmt.Errorf("invalid state contract address %q", cfg.StateContract)
	}

	resolvers := map[string]pubsignals.StateResolver{
		cfg.ChainID: state.NewETHResolver(cfg.EthRPCURL, cfg.StateContract),
	}

	var opts []auth.VerifierOption
	if cfg.IPFSGateway != "" {
		opts = append(opts, auth.WithIPFSGateway(cfg.IPFSGateway))
	}

	v, err := auth.NewVerifier(&loaders.FSKeyLoader{Dir: cfg.KeyDir}, resolvers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create iden3 verifier: %w", err)
	}

	return &Iden3Verifier{verifier: v}, nil
}

// FullVerify checks the proof token against the original authorization
// request and returns the holder's identity reference.
func (v *Iden3Verifier) FullVerify(ctx context.Context, token string, request protocol.AuthorizationRequestMessage, opts ports.VerifyOptions) (core.Identity, error) {
	resp, err := v.verifier.FullVerify(ctx, token, request,
		pubsignals.WithAcceptedStateTransitionDelay(opts.AcceptedStateTransitionDelay))
	if err != nil {
		// A dead context means the proof was never checked, not rejected.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.Identity{}, fmt.Errorf("%w: %w", core.ErrVerifierTimeout, ctxErr)
		}
		return core.Identity{}, fmt.Errorf("%w: %w", core.ErrVerificationFailed, err)
	}

	return core.Identity{DID: resp.From}, nil
}

package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	auth "github.com/iden3/go-iden3-auth/v2"
	"github.com/iden3/iden3comm/v2/protocol"
	"github.com/rs/zerolog"

	"github.com/verity-id/verity/core"
	"github.com/verity-id/verity/ports"
)

// DeepLinkPrefix is the wallet handoff scheme; the challenge rides in the
// i_m query parameter as base64 of its JSON form.
const DeepLinkPrefix = "iden3comm://?i_m="

// Config holds the static parameters of the sign-in flow.
type Config struct {
	// Audience is the verifier's own DID, stamped into every challenge.
	Audience string

	// CallbackPath is appended to the serving host to form the callback
	// URL; the session id rides in its sessionId query parameter.
	CallbackPath string

	// Reason is the human-readable purpose label of the challenge.
	Reason string

	// Query is the credential predicate requested from the holder.
	Query core.QueryTemplate

	// VerifyTimeout bounds the external verifier call.
	VerifyTimeout time.Duration

	// StateTransitionDelay is how stale an on-chain identity state may be
	// and still be accepted.
	StateTransitionDelay time.Duration
}

// AuthService issues sign-in challenges and orchestrates proof verification
// against them.
type AuthService struct {
	store    ports.SessionStore
	verifier ports.ProofVerifier
	eventPub ports.EventPublisher
	log      zerolog.Logger
	cfg      Config
}

// NewAuthService creates a new authentication service. eventPub may be nil
// when no broker is configured.
func NewAuthService(store ports.SessionStore, verifier ports.ProofVerifier, eventPub ports.EventPublisher, log zerolog.Logger, cfg Config) *AuthService {
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 30 * time.Second
	}
	if cfg.StateTransitionDelay <= 0 {
		cfg.StateTransitionDelay = 5 * time.Minute
	}
	if cfg.Reason == "" {
		cfg.Reason = "sign-in"
	}

	return &AuthService{
		store:    store,
		verifier: verifier,
		eventPub: eventPub,
		log:      log,
		cfg:      cfg,
	}
}

// SignIn issues a new sign-in challenge bound to a fresh session. The
// callback URL embeds the session id so the wallet's later proof submission
// can be correlated back to this challenge.
func (s *AuthService) SignIn(ctx context.Context, baseURL string) (protocol.AuthorizationRequestMessage, error) {
	sessionID := uuid.NewString()
	callbackURL := fmt.Sprintf("%s%s?sessionId=%s", strings.TrimSuffix(baseURL, "/"), s.cfg.CallbackPath, sessionID)

	request := auth.CreateAuthorizationRequest(s.cfg.Reason, s.cfg.Audience, callbackURL)
	request.Body.Scope = append(request.Body.Scope, s.cfg.Query.Scope(1))

	session := core.Session{
		ID:        sessionID,
		Request:   request,
		Status:    core.StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, session); err != nil {
		return protocol.AuthorizationRequestMessage{}, fmt.Errorf("failed to register session: %w", err)
	}

	s.log.Info().Str("session_id", sessionID).Msg("issued sign-in challenge")

	if s.eventPub != nil {
		if err := s.eventPub.PublishChallengeIssued(ctx, sessionID); err != nil {
			s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to publish challenge event")
		}
	}

	return request, nil
}

// SignInDeepLink issues a challenge and renders it as a wallet deep link.
// The encoding is lossless: decoding the i_m payload reproduces the exact
// challenge.
func (s *AuthService) SignInDeepLink(ctx context.Context, baseURL string) (string, error) {
	request, err := s.SignIn(ctx, baseURL)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to encode challenge: %w", err)
	}

	return DeepLinkPrefix + base64.StdEncoding.EncodeToString(data), nil
}

// Callback resolves a proof submission against its originating challenge.
// The session moves to exactly one terminal state; replays and late
// verifier responses observe core.ErrSessionNotActive. The proof token is
// never persisted.
func (s *AuthService) Callback(ctx context.Context, sessionID, token string) (core.Identity, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return core.Identity{}, err
	}
	if session.Status != core.StatusPending {
		return core.Identity{}, fmt.Errorf("%w: session is %s", core.ErrSessionNotActive, session.Status)
	}

	vctx, cancel := context.WithTimeout(ctx, s.cfg.VerifyTimeout)
	defer cancel()

	identity, verr := s.verifier.FullVerify(vctx, token, session.Request, ports.VerifyOptions{
		AcceptedStateTransitionDelay: s.cfg.StateTransitionDelay,
	})
	if verr != nil {
		return core.Identity{}, s.fail(ctx, sessionID, verr)
	}

	if err := s.store.Transition(ctx, sessionID, core.StatusVerified, ports.TransitionPayload{UserDID: identity.DID}); err != nil {
		// Another resolution won the race; its outcome stands.
		if errors.Is(err, core.ErrInvalidTransition) {
			return core.Identity{}, core.ErrSessionNotActive
		}
		return core.Identity{}, err
	}

	s.log.Info().Str("session_id", sessionID).Str("user_did", identity.DID).Msg("session verified")
	s.publishResolved(ctx, sessionID)

	return identity, nil
}

// Session returns the current state of a session, for status polling.
func (s *AuthService) Session(ctx context.Context, sessionID string) (core.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// fail classifies a verifier error, records the failure and returns the
// caller-facing error.
func (s *AuthService) fail(ctx context.Context, sessionID string, verr error) error {
	classification := core.ErrVerificationFailed
	if errors.Is(verr, core.ErrVerifierTimeout) || errors.Is(verr, context.DeadlineExceeded) {
		classification = core.ErrVerifierTimeout
	}

	err := s.store.Transition(ctx, sessionID, core.StatusFailed, ports.TransitionPayload{
		Error: classification.Error(),
	})
	if err != nil {
		// The session was resolved concurrently; keep the first outcome.
		if errors.Is(err, core.ErrInvalidTransition) {
			return core.ErrSessionNotActive
		}
		return err
	}

	s.log.Info().Err(verr).Str("session_id", sessionID).Msg("session failed verification")
	s.publishResolved(ctx, sessionID)

	if errors.Is(verr, classification) {
		return verr
	}
	return fmt.Errorf("%w: %v", classification, verr)
}

func (s *AuthService) publishResolved(ctx context.Context, sessionID string) {
	if s.eventPub == nil {
		return
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load session for event")
		return
	}
	if err := s.eventPub.PublishSessionResolved(ctx, session); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to publish resolution event")
	}
}

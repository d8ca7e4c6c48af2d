package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/verity-id/verity/core"
	"github.com/verity-id/verity/service"
)

// AuthHandlers contains HTTP handlers for the sign-in endpoints.
type AuthHandlers struct {
	authService *service.AuthService
	externalURL string
}

// NewAuthHandlers creates new sign-in handlers.
func NewAuthHandlers(authService *service.AuthService, externalURL string) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		externalURL: strings.TrimSuffix(externalURL, "/"),
	}
}

// baseURL is the address wallets reach this verifier on, either configured
// or derived from the incoming request.
func (h *AuthHandlers) baseURL(c *gin.Context) string {
	if h.externalURL != "" {
		return h.externalURL
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// SignIn issues a new challenge and returns it as JSON, ready to be
// rendered by the caller.
func (h *AuthHandlers) SignIn(c *gin.Context) {
	request, err := h.authService.SignIn(c.Request.Context(), h.baseURL(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, request)
}

// DeepLink issues a new challenge encoded as a wallet deep link.
func (h *AuthHandlers) DeepLink(c *gin.Context) {
	url, err := h.authService.SignInDeepLink(c.Request.Context(), h.baseURL(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create challenge"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// QRCode issues a new challenge and renders its deep link as a QR code.
func (h *AuthHandlers) QRCode(c *gin.Context) {
	url, err := h.authService.SignInDeepLink(c.Request.Context(), h.baseURL(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create challenge"})
		return
	}

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render qr code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// Callback receives the wallet's proof submission. The body is the raw
// proof token; the session id rides in the query string.
func (h *AuthHandlers) Callback(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "missing sessionId"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read proof token"})
		return
	}
	token := strings.TrimSpace(string(body))

	identity, err := h.authService.Callback(c.Request.Context(), sessionID, token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": callbackError(err)})
		return
	}

	c.String(http.StatusOK, "user with ID: %s successfully authenticated", identity.DID)
}

// Status reports the current state of a session, for wallets and front
// ends polling the sign-in outcome.
func (h *AuthHandlers) Status(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing sessionId"})
		return
	}

	session, err := h.authService.Session(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}

	resp := gin.H{
		"id":     session.ID,
		"status": session.Status,
	}
	if session.UserDID != "" {
		resp["userDID"] = session.UserDID
	}

	c.JSON(http.StatusOK, resp)
}

// callbackError maps orchestration failures to a stable, caller-facing
// message; internal faults are never surfaced verbatim.
func callbackError(err error) string {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return "unknown session"
	case errors.Is(err, core.ErrSessionNotActive):
		return "session already resolved or expired"
	case errors.Is(err, core.ErrVerifierTimeout):
		return "proof could not be checked: verifier timed out"
	case errors.Is(err, core.ErrVerificationFailed):
		return "proof verification failed"
	default:
		return "authentication failed"
	}
}

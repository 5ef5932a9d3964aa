package signaling

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-authgate/pairgate/internal/core"
	"github.com/go-authgate/pairgate/internal/middleware"
	"github.com/go-authgate/pairgate/internal/models"
	"github.com/go-authgate/pairgate/internal/services"

	ws "github.com/coder/websocket"
	"github.com/gin-gonic/gin"
)

// SessionReader returns a session if userID participates in it.
type SessionReader interface {
	Get(ctx context.Context, userID, sessionID string) (*models.RemoteSession, error)
}

// Handler upgrades authenticated session participants to the relay.
type Handler struct {
	hub      *Hub
	tokens   middleware.AppTokenVerifier
	sessions SessionReader
	metrics  core.Recorder
}

func NewHandler(
	hub *Hub,
	tokens middleware.AppTokenVerifier,
	sessions SessionReader,
	m core.Recorder,
) *Handler {
	return &Handler{hub: hub, tokens: tokens, sessions: sessions, metrics: m}
}

// Serve handles GET /realtime/ws?sessionId=&access_token=. Browsers cannot
// set headers on a WebSocket handshake, so the token may come in the query.
func (h *Handler) Serve(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_request",
			"error_description": "sessionId is required",
		})
		return
	}

	raw := c.Query("access_token")
	if raw == "" {
		raw = middleware.BearerToken(c.GetHeader("Authorization"))
	}
	userID, err := middleware.AuthenticateAppToken(h.tokens, h.metrics, raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	session, err := h.sessions.Get(c.Request.Context(), userID, sessionID)
	if err != nil {
		status, code := http.StatusInternalServerError, "server_error"
		switch {
		case errors.Is(err, services.ErrNotFound):
			status, code = http.StatusNotFound, "not_found"
		case errors.Is(err, services.ErrForbidden):
			status, code = http.StatusForbidden, "forbidden"
		default:
			log.Printf("[Signaling] session lookup failed for %s: %v", sessionID, err)
		}
		c.JSON(status, gin.H{"error": code, "error_description": err.Error()})
		return
	}
	if session.State == models.SessionStateClosed {
		c.JSON(http.StatusConflict, gin.H{
			"error":             "conflict",
			"error_description": "Session is closed",
		})
		return
	}

	conn, err := ws.Accept(c.Writer, c.Request, &ws.AcceptOptions{
		// authentication is by bearer token, never by cookie
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("[Signaling] accept: %v", err)
		return
	}

	client := NewClient(h.hub, conn, TopicForSession(session.ID), participantRole(session, userID))
	if err := client.Run(c.Request.Context()); err != nil {
		log.Printf("[Signaling] %s rejected on %s: %v", userID, session.ID, err)
	}
}

func participantRole(s *models.RemoteSession, userID string) string {
	switch userID {
	case s.HostUser:
		return string(models.RoleHost)
	case s.ControllerUser:
		return string(models.RoleController)
	default:
		return "owner"
	}
}

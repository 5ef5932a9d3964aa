package handlers

import (
	"net/http"

	"github.com/go-authgate/pairgate/internal/middleware"
	"github.com/go-authgate/pairgate/internal/models"
	"github.com/go-authgate/pairgate/internal/services"

	"github.com/gin-gonic/gin"
)

// RelayCloser disconnects relay clients of a closed session.
type RelayCloser interface {
	CloseSession(sessionID string)
}

type SessionHandler struct {
	sessionService *services.SessionService
	relay          RelayCloser
}

// NewSessionHandler creates the handler. relay may be nil when the built-in
// signaling relay is disabled.
func NewSessionHandler(ss *services.SessionService, relay RelayCloser) *SessionHandler {
	return &SessionHandler{sessionService: ss, relay: relay}
}

type createSessionRequest struct {
	Role string `json:"role"`
}

// Create handles POST /sessions/create
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	res, err := h.sessionService.Create(
		c.Request.Context(),
		middleware.UserID(c),
		models.SessionRole(req.Role),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": res.SessionID,
		"code6":     res.Code6,
		"ttl":       res.TTL,
	})
}

type joinSessionRequest struct {
	Code6 string `json:"code6"`
	Role  string `json:"role"`
}

// Join handles POST /sessions/join
func (h *SessionHandler) Join(c *gin.Context) {
	var req joinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body")
		return
	}

	session, err := h.sessionService.Join(
		c.Request.Context(),
		middleware.UserID(c),
		req.Code6,
		models.SessionRole(req.Role),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.ID,
		"state":     session.State,
	})
}

type closeSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// Close handles POST /sessions/close
func (h *SessionHandler) Close(c *gin.Context) {
	var req closeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body")
		return
	}

	if err := h.sessionService.Close(c.Request.Context(), middleware.UserID(c), req.SessionID); err != nil {
		respondError(c, err)
		return
	}
	if h.relay != nil {
		h.relay.CloseSession(req.SessionID)
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": req.SessionID,
		"status":    models.SessionStateClosed,
	})
}

// Get handles GET /sessions?sessionId= for participants only.
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.sessionService.Get(
		c.Request.Context(),
		middleware.UserID(c),
		c.Query("sessionId"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId":  session.ID,
		"state":      session.State,
		"owner":      session.OwnerUser,
		"controller": session.ControllerUser,
		"host":       session.HostUser,
		"expires_at": session.ExpiresAt,
		"created_at": session.CreatedAt,
		"started_at": session.StartedAt,
		"closed_at":  session.ClosedAt,
	})
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/middleware"
	"github.com/go-authgate/pairgate/internal/services"
	"github.com/go-authgate/pairgate/internal/signaling"

	"github.com/gin-gonic/gin"
)

// RelayPath is where the built-in signaling relay is mounted.
const RelayPath = "/realtime/ws"

type RealtimeHandler struct {
	sessionService *services.SessionService
	config         *config.Config
	now            func() time.Time
}

func NewRealtimeHandler(ss *services.SessionService, cfg *config.Config) *RealtimeHandler {
	return &RealtimeHandler{sessionService: ss, config: cfg, now: time.Now}
}

// ICE handles GET /ice
func (h *RealtimeHandler) ICE(c *gin.Context) {
	servers, err := h.config.ICEServers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"iceServers": servers})
}

// SignedTopic handles GET /realtime/signed-topic?sessionId=
func (h *RealtimeHandler) SignedTopic(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		badRequest(c, "sessionId is required")
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), middleware.UserID(c), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"endpoint":    h.endpoint(),
		"apikey":      h.config.RealtimeAPIKey,
		"topic":       signaling.TopicForSession(session.ID),
		"signedToken": nil,
		"expires_at":  h.now().Add(h.config.SessionTTL).Unix(),
	})
}

// endpoint is the external realtime service when configured, otherwise
// the built-in relay derived from BASE_URL.
func (h *RealtimeHandler) endpoint() string {
	if h.config.RealtimeEndpoint != "" {
		return h.config.RealtimeEndpoint
	}
	base := h.config.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimRight(base, "/") + RelayPath
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-authgate/pairgate/internal/middleware"
	"github.com/go-authgate/pairgate/internal/services"

	"github.com/gin-gonic/gin"
)

type UsageHandler struct {
	usageService *services.UsageService
}

func NewUsageHandler(us *services.UsageService) *UsageHandler {
	return &UsageHandler{usageService: us}
}

type usageLogRequest struct {
	Event string         `json:"event"`
	Level string         `json:"level"`
	Data  map[string]any `json:"data"`
}

// Record handles POST /logs
func (h *UsageHandler) Record(c *gin.Context) {
	var req usageLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body")
		return
	}

	err := h.usageService.Record(c.Request.Context(), middleware.UserID(c), services.UsageEvent{
		Event:     req.Event,
		Level:     req.Level,
		Data:      req.Data,
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Recent handles GET /logs?limit=
func (h *UsageHandler) Recent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		badRequest(c, "limit must be an integer")
		return
	}

	logs, err := h.usageService.Recent(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

package handlers

import (
	"net/http"

	"github.com/go-authgate/pairgate/internal/middleware"
	"github.com/go-authgate/pairgate/internal/services"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	deviceService *services.DeviceService
}

func NewDeviceHandler(ds *services.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: ds}
}

type deviceStartRequest struct {
	Interval  *int `json:"interval"`
	ExpiresIn *int `json:"expires_in"`
}

// Start handles POST /device/start
func (h *DeviceHandler) Start(c *gin.Context) {
	var req deviceStartRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	res, err := h.deviceService.Start(c.Request.Context(), req.Interval, req.ExpiresIn)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device_code":               res.DeviceCode,
		"user_code":                 res.UserCode,
		"verification_uri":          res.VerificationURI,
		"verification_uri_complete": res.VerificationURIComplete,
		"interval":                  res.Interval,
		"expires_in":                res.ExpiresIn,
	})
}

type deviceApproveRequest struct {
	DeviceCode string `json:"device_code"`
	UserCode   string `json:"user_code"`
}

// Approve handles POST /device/approve. The caller is identified by the
// identity provider, never by an app token.
func (h *DeviceHandler) Approve(c *gin.Context) {
	var req deviceApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body")
		return
	}

	_, err := h.deviceService.Approve(
		c.Request.Context(),
		middleware.UserID(c),
		req.DeviceCode,
		req.UserCode,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": services.PollStatusApproved})
}

type devicePollRequest struct {
	DeviceCode string `json:"device_code" binding:"required"`
}

// Poll handles POST /device/poll. Expiry is reported as a normal status.
func (h *DeviceHandler) Poll(c *gin.Context) {
	var req devicePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "device_code is required")
		return
	}

	res, err := h.deviceService.Poll(c.Request.Context(), req.DeviceCode)
	if err != nil {
		respondError(c, err)
		return
	}

	if res.Status != services.PollStatusApproved {
		c.JSON(http.StatusOK, gin.H{"status": res.Status})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     res.Status,
		"app_token":  res.Token.Token,
		"token_type": res.Token.TokenType,
		"expires_in": res.Token.ExpiresIn,
		"user":       gin.H{"id": res.UserID},
	})
}

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Health handles GET /health. Only the database decides the status code;
// other checks are reported but do not fail the probe.
func Health(database HealthChecker, optional map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		body := gin.H{"status": "healthy", "database": "connected"}
		status := http.StatusOK

		if err := database(ctx); err != nil {
			body["status"] = "unhealthy"
			body["database"] = "disconnected"
			status = http.StatusServiceUnavailable
		}
		for name, check := range optional {
			if err := check(ctx); err != nil {
				body[name] = "unavailable"
			} else {
				body[name] = "ok"
			}
		}

		c.JSON(status, body)
	}
}

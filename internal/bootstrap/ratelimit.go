package bootstrap

import (
	"fmt"
	"log"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	deviceStart   gin.HandlerFunc
	devicePoll    gin.HandlerFunc
	deviceApprove gin.HandlerFunc
	sessionJoin   gin.HandlerFunc
	preview       gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
func setupRateLimiting(
	cfg *config.Config,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	if !cfg.EnableRateLimit {
		noOp := func(c *gin.Context) { c.Next() }
		log.Println("Rate limiting disabled")
		return rateLimitMiddlewares{
			deviceStart:   noOp,
			devicePoll:    noOp,
			deviceApprove: noOp,
			sessionJoin:   noOp,
			preview:       noOp,
		}, nil
	}
	return createRateLimiters(cfg, redisClient)
}

// createRateLimiters creates one independent per-IP limit per endpoint
func createRateLimiters(
	cfg *config.Config,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	log.Printf("Rate limiting enabled (store: %s)", cfg.RateLimitStore)

	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)

	var firstErr error
	createLimiter := func(requestsPerMinute int, name string) gin.HandlerFunc {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Name:              name,
			RequestsPerMinute: requestsPerMinute,
			StoreType:         storeType,
			RedisClient:       redisClient,
			CleanupInterval:   cfg.RateLimitCleanupInterval,
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to create rate limiter for %s: %w", name, err)
		}
		return limiter
	}

	limiters := rateLimitMiddlewares{
		deviceStart:   createLimiter(cfg.DeviceStartRateLimit, "device_start"),
		devicePoll:    createLimiter(cfg.DevicePollRateLimit, "device_poll"),
		deviceApprove: createLimiter(cfg.DeviceApproveRateLimit, "device_approve"),
		sessionJoin:   createLimiter(cfg.SessionJoinRateLimit, "session_join"),
		preview:       createLimiter(cfg.PreviewRateLimit, "preview"),
	}
	return limiters, firstErr
}

package bootstrap

import (
	"context"
	"log"

	"github.com/go-authgate/pairgate/internal/handlers"
	"github.com/go-authgate/pairgate/internal/metrics"
	"github.com/go-authgate/pairgate/internal/middleware"
	"github.com/go-authgate/pairgate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(app *Application) (*gin.Engine, error) {
	cfg := app.Config
	r := gin.New()

	r.HandleMethodNotAllowed = true
	r.NoMethod(middleware.MethodNotAllowed(r.Routes))

	r.Use(metrics.HTTPMetricsMiddleware(app.MetricsRecorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	r.GET("/health", handlers.Health(
		func(context.Context) error { return app.DB.Health() },
		optionalHealthChecks(app),
	))
	setupMetricsEndpoint(r, app)

	rateLimiters, err := setupRateLimiting(cfg, app.RedisClient)
	if err != nil {
		return nil, err
	}
	setupAllRoutes(r, app, rateLimiters)

	logServerStartup(app)
	return r, nil
}

func optionalHealthChecks(app *Application) map[string]handlers.HealthChecker {
	checks := map[string]handlers.HealthChecker{}
	if app.RedisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return app.RedisClient.Ping(ctx).Err()
		}
	}
	if app.IdentityCache != nil {
		checks["identity_cache"] = app.IdentityCache.Health
	}
	return checks
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, app *Application) {
	cfg := app.Config
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(r *gin.Engine, app *Application, rl rateLimitMiddlewares) {
	h := app.HandlerSet

	r.GET("/ice", h.realtime.ICE)

	// Device pairing: start and poll are unauthenticated, approve needs a
	// human signed in at the identity provider
	device := r.Group("/device", middleware.NoStore())
	{
		device.POST("/start", rl.deviceStart, h.device.Start)
		device.POST("/poll", rl.devicePoll, h.device.Poll)
		device.POST(
			"/approve",
			rl.deviceApprove,
			middleware.RequireIdentity(app.IdentityProvider),
			h.device.Approve,
		)
	}

	// Everything else runs as the holder of an app token
	api := r.Group("", middleware.NoStore(), middleware.RequireAppToken(app.AppTokens, app.MetricsRecorder))
	{
		api.POST("/sessions/create", h.session.Create)
		api.POST("/sessions/join", rl.sessionJoin, h.session.Join)
		api.POST("/sessions/close", h.session.Close)
		api.GET("/sessions", h.session.Get)

		api.GET("/realtime/signed-topic", h.realtime.SignedTopic)

		api.POST("/logs", h.usage.Record)
		api.GET("/logs", h.usage.Recent)

		if h.preview != nil {
			api.POST("/preview/compile", rl.preview, h.preview.Compile)
		}
	}

	// The relay authenticates itself: browsers pass the token in the query
	if h.relay != nil {
		r.GET(handlers.RelayPath, h.relay.Serve)
	}
}

// logServerStartup logs server startup information
func logServerStartup(app *Application) {
	cfg := app.Config
	log.Printf("PairGate server starting on %s", cfg.ServerAddr)
	log.Printf("Verification URL: %s", cfg.VerificationURI())
	log.Printf("Device single-use mode: %t", cfg.DeviceSingleUse)
	switch {
	case cfg.RealtimeEndpoint != "":
		log.Printf("Realtime endpoint: %s (external)", cfg.RealtimeEndpoint)
	case app.SignalingHub != nil:
		log.Printf("Realtime endpoint: built-in relay at %s", handlers.RelayPath)
	default:
		log.Printf("Realtime endpoint: none configured")
	}
	if app.Compiler == nil {
		log.Printf("Preview compiler disabled")
	}
}

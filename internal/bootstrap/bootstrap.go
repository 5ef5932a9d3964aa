package bootstrap

import (
	"context"
	"net/http"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/core"
	"github.com/go-authgate/pairgate/internal/preview"
	"github.com/go-authgate/pairgate/internal/services"
	"github.com/go-authgate/pairgate/internal/signaling"
	"github.com/go-authgate/pairgate/internal/store"
	"github.com/go-authgate/pairgate/internal/token"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB              *store.Store
	MetricsRecorder core.Recorder
	MetricsCache    core.Cache[int64]
	IdentityCache   core.Cache[core.Identity]
	RedisClient     *redis.Client
	cacheClosers    []func() error

	// Credentials
	AppTokens        *token.AppTokenProvider
	IdentityProvider core.IdentityProvider

	// Services
	AuditService   *services.AuditService
	DeviceService  *services.DeviceService
	SessionService *services.SessionService
	UsageService   *services.UsageService
	Compiler       *preview.Compiler
	SignalingHub   *signaling.Hub

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes the application and serves until a shutdown signal.
func Run(ctx context.Context, cfg *config.Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	app.startWithGracefulShutdown()
	return nil
}

// New builds every component without starting the server.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	if err := validateAllConfiguration(cfg); err != nil {
		return nil, err
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		app.closeInfrastructure()
		return nil, err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		app.closeInfrastructure()
		return nil, err
	}

	// Phase 4: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		app.closeInfrastructure()
		return nil, err
	}

	return app, nil
}

// initializeInfrastructure sets up database, metrics, caches, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = initializeMetrics(app.Config)

	var closer func() error
	app.MetricsCache, closer, err = initializeMetricsCache(ctx, app.Config)
	if err != nil {
		return err
	}
	app.addCloser(closer)

	app.IdentityCache, closer, err = initializeIdentityCache(ctx, app.Config)
	if err != nil {
		return err
	}
	app.addCloser(closer)

	app.RedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	return err
}

func (app *Application) addCloser(closer func() error) {
	if closer != nil {
		app.cacheClosers = append(app.cacheClosers, closer)
	}
}

// closeInfrastructure releases whatever initializeInfrastructure opened.
func (app *Application) closeInfrastructure() {
	for _, closer := range app.cacheClosers {
		_ = closer()
	}
	if app.RedisClient != nil {
		_ = app.RedisClient.Close()
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}

// initializeBusinessLayer sets up credentials and services
func (app *Application) initializeBusinessLayer() error {
	var err error

	app.AppTokens, app.IdentityProvider, err = initializeCredentials(
		app.Config,
		app.IdentityCache,
		app.MetricsRecorder,
	)
	if err != nil {
		return err
	}

	// Audit service (required by other services)
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	svc := initializeServices(app.Config, app.DB, app.AppTokens, app.AuditService, app.MetricsRecorder)
	app.DeviceService = svc.device
	app.SessionService = svc.session
	app.UsageService = svc.usage
	app.Compiler = svc.compiler

	if app.Config.SignalingEnabled {
		app.SignalingHub = signaling.NewHub(app.MetricsRecorder)
	}
	return nil
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	app.HandlerSet = initializeHandlers(app)

	var err error
	app.Router, err = setupRouter(app)
	if err != nil {
		return err
	}

	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Server)
	addSignalingShutdownJob(m, app.SignalingHub)
	addRedisClientShutdownJob(m, app.RedisClient)
	addAuditServiceShutdownJob(m, app.AuditService)
	addAuditLogCleanupJob(m, app.Config, app.AuditService)
	addExpiredRowCleanupJob(m, app.Config, app.DB)
	addMetricsGaugeUpdateJob(m, app.Config, app.DB, app.MetricsRecorder, app.MetricsCache)
	addCacheCleanupJob(m, app.cacheClosers)
	addDatabaseShutdownJob(m, app.DB)

	<-m.Done()
}

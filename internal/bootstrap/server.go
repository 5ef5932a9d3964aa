package bootstrap

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/core"
	"github.com/go-authgate/pairgate/internal/metrics"
	"github.com/go-authgate/pairgate/internal/models"
	"github.com/go-authgate/pairgate/internal/services"
	"github.com/go-authgate/pairgate/internal/signaling"
	"github.com/go-authgate/pairgate/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
)

// createHTTPServer creates the HTTP server instance. Relay connections
// outlive any request timeout, so the body timeouts are left unset when the
// built-in relay is on.
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if !cfg.SignalingEnabled {
		srv.ReadTimeout = 30 * time.Second
		srv.WriteTimeout = 30 * time.Second
	}
	return srv
}

// runPeriodically calls fn now and then every interval until ctx is done.
func runPeriodically(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fn(ctx)
	for {
		select {
		case <-ticker.C:
			fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, srv *http.Server) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addSignalingShutdownJob disconnects every relay peer. Hijacked websocket
// connections are not tracked by http.Server.Shutdown.
func addSignalingShutdownJob(m *graceful.Manager, hub *signaling.Hub) {
	if hub == nil {
		return
	}
	m.AddShutdownJob(func() error {
		log.Println("Closing signaling relay...")
		hub.Shutdown()
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		log.Println("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
			return err
		}
		log.Println("Redis connection closed")
		return nil
	})
}

// addAuditServiceShutdownJob adds audit service shutdown handler
func addAuditServiceShutdownJob(m *graceful.Manager, auditService *services.AuditService) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down audit service: %v", err)
			return err
		}
		return nil
	})
}

// addAuditLogCleanupJob adds periodic audit log cleanup job
func addAuditLogCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	if !cfg.EnableAuditLogging || cfg.AuditLogRetention <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		runPeriodically(ctx, 24*time.Hour, func(context.Context) {
			deleted, err := auditService.CleanupOldLogs(cfg.AuditLogRetention)
			if err != nil {
				log.Printf("Failed to cleanup old audit logs: %v", err)
			} else if deleted > 0 {
				log.Printf("Cleaned up %d old audit logs", deleted)
			}
		})
		return nil
	})
}

// addExpiredRowCleanupJob removes device codes and sessions that ended more
// than CleanupRetention ago.
func addExpiredRowCleanupJob(m *graceful.Manager, cfg *config.Config, db *store.Store) {
	if cfg.CleanupInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		runPeriodically(ctx, cfg.CleanupInterval, func(ctx context.Context) {
			cleanupExpiredRows(ctx, db, time.Now().Add(-cfg.CleanupRetention))
		})
		return nil
	})
}

// cleanupExpiredRows deletes rows that expired or closed before cutoff.
func cleanupExpiredRows(ctx context.Context, db *store.Store, cutoff time.Time) {
	if deleted, err := db.DeleteExpiredDeviceCodes(ctx, cutoff); err != nil {
		log.Printf("[Cleanup] failed to delete expired device codes: %v", err)
	} else if deleted > 0 {
		log.Printf("[Cleanup] deleted %d expired device codes", deleted)
	}

	if deleted, err := db.DeleteStaleSessions(ctx, cutoff); err != nil {
		log.Printf("[Cleanup] failed to delete stale sessions: %v", err)
	} else if deleted > 0 {
		log.Printf("[Cleanup] deleted %d stale sessions", deleted)
	}
}

// addMetricsGaugeUpdateJob adds periodic metrics gauge update job
func addMetricsGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	recorder core.Recorder,
	metricsCache core.Cache[int64],
) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled || metricsCache == nil {
		return
	}

	cacheWrapper := metrics.NewCacheWrapper(db, metricsCache)
	m.AddRunningJob(func(ctx context.Context) error {
		runPeriodically(ctx, cfg.MetricsGaugeUpdateInterval, func(ctx context.Context) {
			updateGaugeMetricsWithCache(ctx, cacheWrapper, recorder, cfg.MetricsGaugeUpdateInterval)
		})
		return nil
	})
}

// addCacheCleanupJob closes the metrics and identity caches on shutdown
func addCacheCleanupJob(m *graceful.Manager, closers []func() error) {
	if len(closers) == 0 {
		return
	}

	m.AddShutdownJob(func() error {
		for _, closer := range closers {
			if err := closer(); err != nil {
				log.Printf("Error closing cache: %v", err)
			}
		}
		log.Println("Caches closed")
		return nil
	})
}

// addDatabaseShutdownJob closes the connection pool last
func addDatabaseShutdownJob(m *graceful.Manager, db *store.Store) {
	m.AddShutdownJob(func() error {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
			return err
		}
		return nil
	})
}

// errorLogger handles rate-limited error logging
type errorLogger struct {
	lastErrorTimes  map[string]time.Time
	rateLimitWindow time.Duration
	now             func() time.Time
}

// newErrorLogger creates a new error logger with rate limiting
func newErrorLogger() *errorLogger {
	return &errorLogger{
		lastErrorTimes:  make(map[string]time.Time),
		rateLimitWindow: 5 * time.Minute,
		now:             time.Now,
	}
}

// logIfNeeded logs an error at most once per window per operation and
// reports whether it did.
func (e *errorLogger) logIfNeeded(operation string, err error) bool {
	now := e.now()
	lastTime, exists := e.lastErrorTimes[operation]
	if exists && now.Sub(lastTime) < e.rateLimitWindow {
		return false
	}

	log.Printf("Database query failed for %s: %v (further errors will be suppressed for %v)",
		operation, err, e.rateLimitWindow)
	e.lastErrorTimes[operation] = now
	return true
}

var gaugeErrorLogger = newErrorLogger()

// updateGaugeMetricsWithCache refreshes the pairing gauges. The cache TTL
// matches the update interval so replicas sharing Redis query once per tick.
func updateGaugeMetricsWithCache(
	ctx context.Context,
	cacheWrapper *metrics.CacheWrapper,
	m core.Recorder,
	cacheTTL time.Duration,
) {
	pendingDeviceCodes, err := cacheWrapper.GetPendingDeviceCodesCount(ctx, cacheTTL)
	if err != nil {
		m.RecordDatabaseQueryError("count_pending_device_codes")
		gaugeErrorLogger.logIfNeeded("count_pending_device_codes", err)
	} else {
		m.SetPendingDeviceCodesCount(int(pendingDeviceCodes))
	}

	pendingSessions, err := cacheWrapper.GetSessionsCount(
		ctx, string(models.SessionStatePending), cacheTTL,
	)
	if err != nil {
		m.RecordDatabaseQueryError("count_pending_sessions")
		gaugeErrorLogger.logIfNeeded("count_pending_sessions", err)
		return
	}

	connectedSessions, err := cacheWrapper.GetSessionsCount(
		ctx, string(models.SessionStateConnected), cacheTTL,
	)
	if err != nil {
		m.RecordDatabaseQueryError("count_connected_sessions")
		gaugeErrorLogger.logIfNeeded("count_connected_sessions", err)
		return
	}

	m.SetSessionsCount(int(pendingSessions), int(connectedSessions))
}

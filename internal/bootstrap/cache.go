package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/go-authgate/pairgate/internal/cache"
	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/core"
	"github.com/go-authgate/pairgate/internal/metrics"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// newCache builds a memory or Redis cache for values of type T.
func newCache[T any](
	ctx context.Context,
	cfg *config.Config,
	cacheType, keyPrefix, label string,
) (core.Cache[T], func() error, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	switch cacheType {
	case config.CacheTypeRedis:
		c, err := cache.NewRueidisCache[T](
			ctx,
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			keyPrefix,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis %s cache: %w", label, err)
		}
		log.Printf("%s cache: redis (addr=%s, db=%d)", label, cfg.RedisAddr, cfg.RedisDB)
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[T]()
		log.Printf("%s cache: memory (single instance only)", label)
		return c, c.Close, nil
	}
}

// initializeMetricsCache initializes the gauge query cache. Nil when gauge
// updates are off.
func initializeMetricsCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[int64], func() error, error) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled {
		return nil, nil, nil
	}
	return newCache[int64](ctx, cfg, cfg.MetricsCacheType, "pairgate:metrics:", "Metrics")
}

// initializeIdentityCache initializes the verified-identity cache. Nil when
// IDENTITY_CACHE_TTL is zero.
func initializeIdentityCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[core.Identity], func() error, error) {
	if cfg.IdentityCacheTTL <= 0 {
		log.Println("Identity cache disabled")
		return nil, nil, nil
	}
	return newCache[core.Identity](ctx, cfg, cfg.IdentityCacheType, "pairgate:identity:", "Identity")
}

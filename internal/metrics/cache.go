package metrics

import (
	"context"
	"time"

	"github.com/go-authgate/pairgate/internal/core"
)

// CacheWrapper is a read-through cache in front of the gauge count queries,
// so several replicas sharing Redis do not all hit the database.
type CacheWrapper struct {
	store core.MetricsStore
	cache core.Cache[int64]
}

func NewCacheWrapper(store core.MetricsStore, cache core.Cache[int64]) *CacheWrapper {
	return &CacheWrapper{store: store, cache: cache}
}

func (m *CacheWrapper) getCountWithCache(
	ctx context.Context,
	key string,
	ttl time.Duration,
	fetchFunc func() (int64, error),
) (int64, error) {
	return m.cache.GetWithFetch(
		ctx,
		key,
		ttl,
		func(ctx context.Context, key string) (int64, error) {
			return fetchFunc()
		},
	)
}

// GetPendingDeviceCodesCount returns the number of unexpired pending codes.
func (m *CacheWrapper) GetPendingDeviceCodesCount(
	ctx context.Context,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(ctx, "devices:pending", ttl, m.store.CountPendingDeviceCodes)
}

// GetSessionsCount returns the number of sessions in state.
func (m *CacheWrapper) GetSessionsCount(
	ctx context.Context,
	state string,
	ttl time.Duration,
) (int64, error) {
	return m.getCountWithCache(ctx, "sessions:"+state, ttl, func() (int64, error) {
		return m.store.CountSessionsByState(state)
	})
}

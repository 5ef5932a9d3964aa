package identity

import (
	"context"
	"time"

	"github.com/go-authgate/pairgate/internal/core"
	"github.com/go-authgate/pairgate/internal/util"
)

// CachedProvider remembers successful verifications for a short TTL.
// Keys are SHA-256 digests, so raw tokens never reach the cache backend.
// Failures are not cached.
type CachedProvider struct {
	inner core.IdentityProvider
	cache core.Cache[core.Identity]
	ttl   time.Duration
}

func NewCachedProvider(
	inner core.IdentityProvider,
	cache core.Cache[core.Identity],
	ttl time.Duration,
) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, ttl: ttl}
}

func (p *CachedProvider) Verify(ctx context.Context, bearer string) (*core.Identity, error) {
	if bearer == "" {
		return nil, ErrInvalidToken
	}

	id, err := p.cache.GetWithFetch(
		ctx,
		util.SHA256Hex(bearer),
		p.ttl,
		func(ctx context.Context, _ string) (core.Identity, error) {
			res, err := p.inner.Verify(ctx, bearer)
			if err != nil {
				return core.Identity{}, err
			}
			return *res, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

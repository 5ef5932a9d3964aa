package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/core"
)

// meteredProvider records verification outcomes and latency.
type meteredProvider struct {
	inner   core.IdentityProvider
	metrics core.Recorder
}

func (p *meteredProvider) Verify(ctx context.Context, bearer string) (*core.Identity, error) {
	start := time.Now()
	id, err := p.inner.Verify(ctx, bearer)
	p.metrics.RecordIdentityVerification(p.inner.Name(), err == nil, time.Since(start))
	return id, err
}

func (p *meteredProvider) Name() string {
	return p.inner.Name()
}

// New builds the configured provider chain. A nil cache or a zero
// IdentityCacheTTL disables caching.
func New(
	cfg *config.Config,
	cache core.Cache[core.Identity],
	metrics core.Recorder,
) (core.IdentityProvider, error) {
	var base core.IdentityProvider

	switch cfg.IdentityMode {
	case config.IdentityModeJWT:
		p, err := NewJWTProvider(cfg.IdentityJWTSecret, cfg.IdentityJWTAudience)
		if err != nil {
			return nil, err
		}
		base = p
	case config.IdentityModeHTTPAPI, "":
		p, err := NewHTTPAPIProvider(cfg)
		if err != nil {
			return nil, err
		}
		base = p
	default:
		return nil, fmt.Errorf("unsupported identity mode: %s", cfg.IdentityMode)
	}

	var provider core.IdentityProvider = &meteredProvider{inner: base, metrics: metrics}
	if cache != nil && cfg.IdentityCacheTTL > 0 {
		provider = NewCachedProvider(provider, cache, cfg.IdentityCacheTTL)
	}
	return provider, nil
}

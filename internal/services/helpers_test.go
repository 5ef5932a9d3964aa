package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/metrics"
	"github.com/go-authgate/pairgate/internal/store"
	"github.com/go-authgate/pairgate/internal/token"

	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:                 "http://localhost:8080",
		VerificationPath:        "/device",
		DeviceCodeExpiration:    10 * time.Minute,
		DeviceCodeMaxExpiration: time.Hour,
		PollingInterval:         5,
		SessionTTL:              5 * time.Minute,
		AppTokenSecret:          "services-test-app-token-secret-000000",
		AppTokenExpiration:      time.Hour,
		AppTokenIssuer:          "http://localhost:8080",
	}
}

func newTokenProvider(t *testing.T, cfg *config.Config) *token.AppTokenProvider {
	t.Helper()
	p, err := token.NewAppTokenProvider(cfg.AppTokenSecret, cfg.AppTokenIssuer, cfg.AppTokenExpiration)
	require.NoError(t, err)
	return p
}

// testClock is a settable clock shared by a service under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newDeviceService(t *testing.T, s *store.Store, cfg *config.Config) *DeviceService {
	t.Helper()
	return NewDeviceService(s, cfg, newTokenProvider(t, cfg), nil, metrics.NewNoopMetrics())
}

func newSessionService(s *store.Store, cfg *config.Config) *SessionService {
	return NewSessionService(s, cfg, nil, metrics.NewNoopMetrics())
}

func intPtr(v int) *int { return &v }

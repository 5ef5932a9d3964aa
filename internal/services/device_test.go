package services

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-authgate/pairgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCodePattern = regexp.MustCompile(`^[A-Z]{4}-[0-9]{4}$`)

func TestDeviceStart_Defaults(t *testing.T) {
	svc := newDeviceService(t, setupTestStore(t), testConfig())

	res, err := svc.Start(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Len(t, res.DeviceCode, 40)
	assert.Regexp(t, userCodePattern, res.UserCode)
	assert.Equal(t, 600, res.ExpiresIn)
	assert.Equal(t, 5, res.Interval)
	assert.Equal(t, "http://localhost:8080/device", res.VerificationURI)
	assert.Equal(t,
		"http://localhost:8080/device?user_code="+res.UserCode,
		res.VerificationURIComplete)
}

func TestDeviceStart_Clamps(t *testing.T) {
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	ctx := context.Background()

	tests := []struct {
		name         string
		interval     *int
		expiresIn    *int
		wantInterval int
		wantExpires  int
	}{
		{"below minimum", intPtr(0), intPtr(10), 1, 60},
		{"above maximum", intPtr(3), intPtr(999999), 3, 3600},
		{"negative", intPtr(-5), intPtr(-1), 1, 60},
		{"in range", intPtr(2), intPtr(120), 2, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Start(ctx, tt.interval, tt.expiresIn)
			require.NoError(t, err)
			assert.Equal(t, tt.wantInterval, res.Interval)
			assert.Equal(t, tt.wantExpires, res.ExpiresIn)
		})
	}
}

func TestDeviceStart_UniqueCodes(t *testing.T) {
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 200 {
		res, err := svc.Start(ctx, nil, nil)
		require.NoError(t, err)
		require.False(t, seen[res.DeviceCode], "duplicate device code")
		seen[res.DeviceCode] = true
		assert.Regexp(t, userCodePattern, res.UserCode)
	}
}

func TestDeviceFlow_PollPendingThenApproved(t *testing.T) {
	cfg := testConfig()
	svc := newDeviceService(t, setupTestStore(t), cfg)
	ctx := context.Background()

	start, err := svc.Start(ctx, nil, nil)
	require.NoError(t, err)

	poll, err := svc.Poll(ctx, start.DeviceCode)
	require.NoError(t, err)
	assert.Equal(t, PollStatusPending, poll.Status)
	assert.Nil(t, poll.Token)

	_, err = svc.Approve(ctx, "user-42", "", start.UserCode)
	require.NoError(t, err)

	poll, err = svc.Poll(ctx, start.DeviceCode)
	require.NoError(t, err)
	assert.Equal(t, PollStatusApproved, poll.Status)
	require.NotNil(t, poll.Token)
	assert.Equal(t, "user-42", poll.UserID)

	claims, err := newTokenProvider(t, cfg).Verify(poll.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Subject)

	// Without single-use mode every later poll mints a fresh token
	again, err := svc.Poll(ctx, start.DeviceCode)
	require.NoError(t, err)
	assert.Equal(t, PollStatusApproved, again.Status)
	assert.NotEqual(t, poll.Token.ID, again.Token.ID)
}

func TestDeviceApprove_ByDeviceCode(t *testing.T) {
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	ctx := context.Background()

	start, err := svc.Start(ctx, nil, nil)
	require.NoError(t, err)

	dc, err := svc.Approve(ctx, "user-1", start.DeviceCode, "")
	require.NoError(t, err)
	assert.Equal(t, models.DeviceCodeStatusApproved, dc.Status)
	assert.Equal(t, "user-1", dc.ApprovedByUserID)
}

func TestDeviceApprove_UserCodeNormalization(t *testing.T) {
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	ctx := context.Background()

	// no dash, lowercase with padding, space instead of dash
	for _, mangle := range []func(string) string{
		func(c string) string { return c[:4] + c[5:] },
		func(c string) string { return " " + strings.ToLower(c) + " " },
		func(c string) string { return strings.ToLower(c[:4]) + " " + c[5:] },
	} {
		start, err := svc.Start(ctx, nil, nil)
		require.NoError(t, err)

		_, err = svc.Approve(ctx, "user-1", "", mangle(start.UserCode))
		assert.NoError(t, err, start.UserCode)
	}
}

func TestDeviceApprove_Errors(t *testing.T) {
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	ctx := context.Background()

	_, err := svc.Approve(ctx, "user-1", "", "ZZZZ-0000")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Approve(ctx, "user-1", "", "not a code")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Approve(ctx, "user-1", "", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Approve(ctx, "", "", "ABCD-1234")
	assert.ErrorIs(t, err, ErrUnauthorized)

	start, err := svc.Start(ctx, nil, nil)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "user-1", "", start.UserCode)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "user-2", "", start.UserCode)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestDeviceApprove_UserCodePrefersPendingRecord(t *testing.T) {
	s := setupTestStore(t)
	svc := newDeviceService(t, s, testConfig())
	ctx := context.Background()

	older, err := svc.Start(ctx, nil, nil)
	require.NoError(t, err)
	newer, err := svc.Start(ctx, nil, nil)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "user-1", newer.DeviceCode, "")
	require.NoError(t, err)

	// the approved record now shares the older pending record's user code
	require.NoError(t, s.DB().Model(&models.DeviceCode{}).
		Where("user_code = ?", newer.UserCode).
		Update("user_code", older.UserCode).Error)

	dc, err := svc.Approve(ctx, "user-2", "", older.UserCode)
	require.NoError(t, err)
	assert.Equal(t, older.DeviceCode[32:], dc.DeviceCodeID)
	assert.Equal(t, "user-2", dc.ApprovedByUserID)
}

func TestDeviceApprove_Expired(t *testing.T) {
	clock := newTestClock()
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	svc.now = clock.Now
	ctx := context.Background()

	start, err := svc.Start(ctx, nil, intPtr(60))
	require.NoError(t, err)

	clock.Advance(61 * time.Second)
	_, err = svc.Approve(ctx, "user-1", "", start.UserCode)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestDevicePoll_ExpiredEvenIfNeverApproved(t *testing.T) {
	clock := newTestClock()
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	svc.now = clock.Now
	ctx := context.Background()

	start, err := svc.Start(ctx, nil, intPtr(60))
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	poll, err := svc.Poll(ctx, start.DeviceCode)
	require.NoError(t, err)
	assert.Equal(t, PollStatusExpired, poll.Status)
}

func TestDevicePoll_ExpiredAfterApproval(t *testing.T) {
	clock := newTestClock()
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	svc.now = clock.Now
	ctx := context.Background()

	start, err := svc.Start(ctx, nil, intPtr(60))
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "user-1", start.DeviceCode, "")
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	poll, err := svc.Poll(ctx, start.DeviceCode)
	require.NoError(t, err)
	assert.Equal(t, PollStatusExpired, poll.Status)
	assert.Nil(t, poll.Token)
}

func TestDevicePoll_UnknownOrMalformed(t *testing.T) {
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	ctx := context.Background()

	for _, code := range []string{
		"",
		"xyz",
		"0123456789abcdef0123456789abcdef01234567",
		"0123456789ABCDEF0123456789ABCDEF01234567",
	} {
		_, err := svc.Poll(ctx, code)
		assert.ErrorIs(t, err, ErrNotFound, code)
	}
}

func TestDevicePoll_SingleUse(t *testing.T) {
	cfg := testConfig()
	cfg.DeviceSingleUse = true
	svc := newDeviceService(t, setupTestStore(t), cfg)
	ctx := context.Background()

	start, err := svc.Start(ctx, nil, nil)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "user-1", "", start.UserCode)
	require.NoError(t, err)

	first, err := svc.Poll(ctx, start.DeviceCode)
	require.NoError(t, err)
	assert.Equal(t, PollStatusApproved, first.Status)
	assert.NotNil(t, first.Token)

	second, err := svc.Poll(ctx, start.DeviceCode)
	require.NoError(t, err)
	assert.Equal(t, PollStatusConsumed, second.Status)
	assert.Nil(t, second.Token)
}

func TestDevicePoll_SingleUseConcurrent(t *testing.T) {
	cfg := testConfig()
	cfg.DeviceSingleUse = true
	svc := newDeviceService(t, setupTestStore(t), cfg)
	ctx := context.Background()

	start, err := svc.Start(ctx, nil, nil)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "user-1", "", start.UserCode)
	require.NoError(t, err)

	const pollers = 8
	results := make(chan string, pollers)
	var wg sync.WaitGroup
	for range pollers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.Poll(ctx, start.DeviceCode)
			if err == nil {
				results <- res.Status
			}
		}()
	}
	wg.Wait()
	close(results)

	counts := map[string]int{}
	for status := range results {
		counts[status]++
	}
	assert.Equal(t, 1, counts[PollStatusApproved])
	assert.Equal(t, pollers-1, counts[PollStatusConsumed])
}

func TestDeviceApprove_ConcurrentExactlyOneWins(t *testing.T) {
	svc := newDeviceService(t, setupTestStore(t), testConfig())
	ctx := context.Background()

	start, err := svc.Start(ctx, nil, nil)
	require.NoError(t, err)

	const approvers = 2
	errs := make(chan error, approvers)
	var wg sync.WaitGroup
	for i := range approvers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Approve(ctx, "user-"+string(rune('a'+i)), "", start.UserCode)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, conflict int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrConflict):
			conflict++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)
}

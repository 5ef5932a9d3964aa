package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-authgate/pairgate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionCreate(t *testing.T) {
	s := setupTestStore(t)
	svc := newSessionService(s, testConfig())
	ctx := context.Background()

	res, err := svc.Create(ctx, "alice", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Regexp(t, `^[0-9]{6}$`, res.Code6)
	assert.Equal(t, 300, res.TTL)

	session, err := s.GetSessionByID(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatePending, session.State)
	assert.Equal(t, "alice", session.OwnerUser)
	assert.Equal(t, "alice", session.ControllerUser)
	assert.Empty(t, session.HostUser)

	_, err = svc.Create(ctx, "alice", "observer")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSessionJoin_ConnectsInEitherOrder(t *testing.T) {
	for _, creatorRole := range []models.SessionRole{models.RoleController, models.RoleHost} {
		t.Run(string(creatorRole), func(t *testing.T) {
			s := setupTestStore(t)
			svc := newSessionService(s, testConfig())
			ctx := context.Background()

			created, err := svc.Create(ctx, "alice", creatorRole)
			require.NoError(t, err)

			joined, err := svc.Join(ctx, "bob", created.Code6, creatorRole.Other())
			require.NoError(t, err)
			assert.Equal(t, created.SessionID, joined.ID)
			assert.Equal(t, models.SessionStateConnected, joined.State)
			assert.NotNil(t, joined.StartedAt)
			assert.Equal(t, "bob", joined.BoundUser(creatorRole.Other()))
			assert.Equal(t, "alice", joined.BoundUser(creatorRole))
		})
	}
}

func TestSessionJoin_IdempotentAndConflict(t *testing.T) {
	s := setupTestStore(t)
	svc := newSessionService(s, testConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", models.RoleController)
	require.NoError(t, err)

	first, err := svc.Join(ctx, "bob", created.Code6, models.RoleHost)
	require.NoError(t, err)

	again, err := svc.Join(ctx, "bob", created.Code6, models.RoleHost)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, models.SessionStateConnected, again.State)
	assert.Equal(t, first.StartedAt.Unix(), again.StartedAt.Unix())

	_, err = svc.Join(ctx, "mallory", created.Code6, models.RoleHost)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Join(ctx, "mallory", created.Code6, models.RoleController)
	assert.ErrorIs(t, err, ErrConflict)

	// creator rejoining its own role
	_, err = svc.Join(ctx, "alice", created.Code6, models.RoleController)
	assert.NoError(t, err)
}

func TestSessionJoin_Errors(t *testing.T) {
	svc := newSessionService(setupTestStore(t), testConfig())
	ctx := context.Background()

	_, err := svc.Join(ctx, "bob", "000000", models.RoleHost)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Join(ctx, "bob", "", models.RoleHost)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Join(ctx, "bob", "123456", "admin")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestSessionJoin_PendingSessionExpires(t *testing.T) {
	clock := newTestClock()
	svc := newSessionService(setupTestStore(t), testConfig())
	svc.now = clock.Now
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", models.RoleController)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	_, err = svc.Join(ctx, "bob", created.Code6, models.RoleHost)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionJoin_ConnectedOutlivesJoinWindow(t *testing.T) {
	clock := newTestClock()
	svc := newSessionService(setupTestStore(t), testConfig())
	svc.now = clock.Now
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", models.RoleController)
	require.NoError(t, err)
	_, err = svc.Join(ctx, "bob", created.Code6, models.RoleHost)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	again, err := svc.Join(ctx, "bob", created.Code6, models.RoleHost)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateConnected, again.State)
}

func TestSessionJoin_ConcurrentSameRole(t *testing.T) {
	svc := newSessionService(setupTestStore(t), testConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", models.RoleController)
	require.NoError(t, err)

	users := []string{"bob", "carol", "dave", "erin"}
	errs := make(chan error, len(users))
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := svc.Join(ctx, u, created.Code6, models.RoleHost)
			errs <- err
		}(u)
	}
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, ok)
}

func TestSessionClose(t *testing.T) {
	s := setupTestStore(t)
	svc := newSessionService(s, testConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", models.RoleController)
	require.NoError(t, err)
	_, err = svc.Join(ctx, "bob", created.Code6, models.RoleHost)
	require.NoError(t, err)

	err = svc.Close(ctx, "mallory", created.SessionID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Close(ctx, "unknown", "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Close(ctx, "bob", created.SessionID))
	require.NoError(t, svc.Close(ctx, "alice", created.SessionID), "close is idempotent")

	session, err := s.GetSessionByID(ctx, created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStateClosed, session.State)
	assert.NotNil(t, session.ClosedAt)

	_, err = svc.Join(ctx, "bob", created.Code6, models.RoleHost)
	assert.ErrorIs(t, err, ErrNotFound, "closed sessions are not joinable")
}

func TestSessionGet_ParticipantsOnly(t *testing.T) {
	svc := newSessionService(setupTestStore(t), testConfig())
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", models.RoleHost)
	require.NoError(t, err)

	session, err := svc.Get(ctx, "alice", created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, created.Code6, session.Code6)

	_, err = svc.Get(ctx, "bob", created.SessionID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/core"
	"github.com/go-authgate/pairgate/internal/models"
	"github.com/go-authgate/pairgate/internal/store"
	"github.com/go-authgate/pairgate/internal/util"

	"github.com/google/uuid"
)

// CreateSessionResult is returned to the creator of a session.
type CreateSessionResult struct {
	SessionID string
	Code6     string
	TTL       int
}

// SessionService brokers controller/host pairings through a six digit code.
type SessionService struct {
	store   *store.Store
	config  *config.Config
	audit   *AuditService
	metrics core.Recorder
	now     func() time.Time
}

func NewSessionService(
	s *store.Store,
	cfg *config.Config,
	audit *AuditService,
	m core.Recorder,
) *SessionService {
	return &SessionService{store: s, config: cfg, audit: audit, metrics: m, now: time.Now}
}

// Create opens a pending session owned by userID and bound to role, which
// defaults to controller.
func (s *SessionService) Create(
	ctx context.Context,
	userID string,
	role models.SessionRole,
) (*CreateSessionResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if role == "" {
		role = models.RoleController
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be host or controller", ErrInvalidRequest)
	}

	code6, err := util.GenerateCode6()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}

	now := s.now()
	session := &models.RemoteSession{
		ID:        uuid.New().String(),
		Code6:     code6,
		State:     models.SessionStatePending,
		OwnerUser: userID,
		ExpiresAt: now.Add(s.config.SessionTTL),
		CreatedAt: now,
	}
	if role == models.RoleHost {
		session.HostUser = userID
	} else {
		session.ControllerUser = userID
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	s.metrics.RecordSessionCreated(string(role))

	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventSessionCreated,
		ActorUserID:  userID,
		ResourceType: models.ResourceRemoteSession,
		ResourceID:   session.ID,
		Action:       "Remote session created",
		Details:      models.JSONMap{"role": string(role)},
		Success:      true,
	})

	return &CreateSessionResult{
		SessionID: session.ID,
		Code6:     code6,
		TTL:       int(s.config.SessionTTL.Seconds()),
	}, nil
}

// Join binds userID to role on the session identified by code6. Joining a
// role already held by the same user succeeds without changes.
func (s *SessionService) Join(
	ctx context.Context,
	userID, code6 string,
	role models.SessionRole,
) (*models.RemoteSession, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if code6 == "" {
		return nil, fmt.Errorf("%w: code6 is required", ErrInvalidRequest)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be host or controller", ErrInvalidRequest)
	}

	now := s.now()
	session, err := s.store.FindJoinableSession(ctx, code6, now)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	switch bound := session.BoundUser(role); bound {
	case userID:
		return session, nil
	case "":
	default:
		s.logJoinConflict(ctx, userID, session, role)
		return nil, ErrRoleTaken
	}

	err = s.store.BindSessionRole(ctx, session.ID, role, userID, session.State, now)
	if err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return s.resolveLostBind(ctx, userID, session.ID, role)
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	updated, err := s.store.GetSessionByID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	connected := session.State == models.SessionStatePending &&
		updated.State == models.SessionStateConnected
	s.metrics.RecordSessionJoined(string(role), connected)

	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventSessionJoined,
		ActorUserID:  userID,
		ResourceType: models.ResourceRemoteSession,
		ResourceID:   session.ID,
		Action:       "Remote session joined",
		Details:      models.JSONMap{"role": string(role), "state": string(updated.State)},
		Success:      true,
	})

	return updated, nil
}

// resolveLostBind runs after a guarded bind matched no row. The same user
// may have won through a concurrent request; anything else is a conflict.
func (s *SessionService) resolveLostBind(
	ctx context.Context,
	userID, sessionID string,
	role models.SessionRole,
) (*models.RemoteSession, error) {
	current, err := s.store.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if current.IsJoinable(s.now()) && current.BoundUser(role) == userID {
		return current, nil
	}
	s.logJoinConflict(ctx, userID, current, role)
	return nil, ErrRoleTaken
}

func (s *SessionService) logJoinConflict(
	ctx context.Context,
	userID string,
	session *models.RemoteSession,
	role models.SessionRole,
) {
	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventPairingConflict,
		Severity:     models.SeverityWarning,
		ActorUserID:  userID,
		ResourceType: models.ResourceRemoteSession,
		ResourceID:   session.ID,
		Action:       "Join of a role bound to another user",
		Details:      models.JSONMap{"role": string(role)},
		Success:      false,
	})
}

// Close ends the session. Only participants may close it; closing an
// already closed session succeeds.
func (s *SessionService) Close(ctx context.Context, userID, sessionID string) error {
	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if session.State == models.SessionStateClosed {
		return nil
	}

	now := s.now()
	if err := s.store.CloseSession(ctx, sessionID, now); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	s.metrics.RecordSessionClosed(now.Sub(session.CreatedAt))

	s.audit.Log(ctx, AuditLogEntry{
		EventType:    models.EventSessionClosed,
		ActorUserID:  userID,
		ResourceType: models.ResourceRemoteSession,
		ResourceID:   sessionID,
		Action:       "Remote session closed",
		Success:      true,
	})
	return nil
}

// Get returns the session if userID participates in it.
func (s *SessionService) Get(
	ctx context.Context,
	userID, sessionID string,
) (*models.RemoteSession, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidRequest)
	}

	session, err := s.store.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if !session.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return session, nil
}

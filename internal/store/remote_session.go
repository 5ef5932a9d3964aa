package store

import (
	"context"
	"time"

	"github.com/go-authgate/pairgate/internal/models"

	"gorm.io/gorm"
)

// CreateSession persists a new remote session.
func (s *Store) CreateSession(ctx context.Context, session *models.RemoteSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

// GetSessionByID returns a session by its external id.
func (s *Store) GetSessionByID(ctx context.Context, id string) (*models.RemoteSession, error) {
	var session models.RemoteSession
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

// FindJoinableSession returns the most recent session for code6 that is
// either connected, or pending with its join window still open.
func (s *Store) FindJoinableSession(
	ctx context.Context,
	code6 string,
	now time.Time,
) (*models.RemoteSession, error) {
	var session models.RemoteSession
	err := s.db.WithContext(ctx).
		Where("code6 = ?", code6).
		Where(
			s.db.Where("state = ?", models.SessionStateConnected).
				Or("state = ? AND expires_at > ?", models.SessionStatePending, now),
		).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

// BindSessionRole binds userID to role if the role column is still empty and
// the state is still expectState. When the complementary role is already
// bound on a pending session, the same statement moves it to connected and
// stamps started_at, so concurrent joins from both sides cannot leave a
// fully bound session pending.
func (s *Store) BindSessionRole(
	ctx context.Context,
	id string,
	role models.SessionRole,
	userID string,
	expectState models.SessionState,
	now time.Time,
) error {
	column := role.Column()
	other := role.Other().Column()
	bothBound := other + " <> '' AND state = ?"

	result := s.db.WithContext(ctx).
		Model(&models.RemoteSession{}).
		Where("id = ? AND "+column+" = '' AND state = ?", id, expectState).
		Updates(map[string]any{
			column: userID,
			"state": gorm.Expr(
				"CASE WHEN "+bothBound+" THEN ? ELSE state END",
				models.SessionStatePending,
				models.SessionStateConnected,
			),
			"started_at": gorm.Expr(
				"CASE WHEN "+bothBound+" THEN ? ELSE started_at END",
				models.SessionStatePending,
				now,
			),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// CloseSession moves a session to closed. ErrStaleState means it was
// already closed.
func (s *Store) CloseSession(ctx context.Context, id string, now time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.RemoteSession{}).
		Where("id = ? AND state <> ?", id, models.SessionStateClosed).
		Updates(map[string]any{
			"state":     models.SessionStateClosed,
			"closed_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// DeleteStaleSessions removes closed sessions and pending sessions whose
// join window ended before the cutoff. Connected sessions are kept.
func (s *Store) DeleteStaleSessions(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("state = ? AND closed_at < ?", models.SessionStateClosed, before).
		Or("state = ? AND expires_at < ?", models.SessionStatePending, before).
		Delete(&models.RemoteSession{})
	return result.RowsAffected, result.Error
}

// CountSessionsByState counts sessions in the given state. Pending sessions
// past their join window are not counted.
func (s *Store) CountSessionsByState(state string) (int64, error) {
	query := s.db.Model(&models.RemoteSession{}).Where("state = ?", state)
	if models.SessionState(state) == models.SessionStatePending {
		query = query.Where("expires_at > ?", time.Now())
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

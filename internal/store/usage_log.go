package store

import (
	"context"

	"github.com/go-authgate/pairgate/internal/models"
)

// CreateUsageLog inserts a client usage event.
func (s *Store) CreateUsageLog(ctx context.Context, entry *models.UsageLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// ListUsageLogsByUser returns the newest usage events for a user.
func (s *Store) ListUsageLogsByUser(
	ctx context.Context,
	userID string,
	limit int,
) ([]models.UsageLog, error) {
	var logs []models.UsageLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

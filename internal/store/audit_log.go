package store

import (
	"time"

	"github.com/go-authgate/pairgate/internal/models"
)

// CreateAuditLog writes a single audit entry.
func (s *Store) CreateAuditLog(entry *models.AuditLog) error {
	return s.db.Create(entry).Error
}

// CreateAuditLogBatch writes entries in one round trip.
func (s *Store) CreateAuditLogBatch(entries []*models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.CreateInBatches(entries, 100).Error
}

// ListAuditLogsByResource returns the trail for one resource, oldest first.
func (s *Store) ListAuditLogsByResource(
	resourceType models.ResourceType,
	resourceID string,
) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := s.db.
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("event_time ASC").
		Find(&logs).Error
	return logs, err
}

// DeleteOldAuditLogs removes entries created before the cutoff.
func (s *Store) DeleteOldAuditLogs(before time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", before).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

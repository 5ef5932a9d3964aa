package store

import (
	"context"
	"time"

	"github.com/go-authgate/pairgate/internal/models"
)

// CreateDeviceCode persists a new pairing record.
func (s *Store) CreateDeviceCode(ctx context.Context, dc *models.DeviceCode) error {
	return s.db.WithContext(ctx).Create(dc).Error
}

// GetDeviceCodesByID returns every record whose device code ends with the
// given lookup suffix, newest first. Callers verify the hash.
func (s *Store) GetDeviceCodesByID(
	ctx context.Context,
	deviceCodeID string,
) ([]*models.DeviceCode, error) {
	var codes []*models.DeviceCode
	err := s.db.WithContext(ctx).
		Where("device_code_id = ?", deviceCodeID).
		Order("id DESC").
		Find(&codes).Error
	return codes, err
}

// GetDeviceCodeByUserCode returns the most recent pending record for a user
// code. User codes are not unique across time. Expiry is left to the caller.
func (s *Store) GetDeviceCodeByUserCode(
	ctx context.Context,
	userCode string,
) (*models.DeviceCode, error) {
	var dc models.DeviceCode
	err := s.db.WithContext(ctx).
		Where("user_code = ? AND status = ?", userCode, models.DeviceCodeStatusPending).
		Order("id DESC").
		First(&dc).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &dc, nil
}

// GetLatestDeviceCodeByUserCode returns the most recent record for a user
// code whatever its status.
func (s *Store) GetLatestDeviceCodeByUserCode(
	ctx context.Context,
	userCode string,
) (*models.DeviceCode, error) {
	var dc models.DeviceCode
	err := s.db.WithContext(ctx).
		Where("user_code = ?", userCode).
		Order("id DESC").
		First(&dc).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &dc, nil
}

// GetDeviceCode reloads a record by primary key.
func (s *Store) GetDeviceCode(ctx context.Context, id int64) (*models.DeviceCode, error) {
	var dc models.DeviceCode
	if err := s.db.WithContext(ctx).First(&dc, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &dc, nil
}

// ApproveDeviceCode moves a record from pending to approved. The update is
// guarded on status and expiry; ErrStaleState means another request won.
func (s *Store) ApproveDeviceCode(
	ctx context.Context,
	id int64,
	userID string,
	now time.Time,
) error {
	result := s.db.WithContext(ctx).
		Model(&models.DeviceCode{}).
		Where("id = ? AND status = ? AND expires_at > ?", id, models.DeviceCodeStatusPending, now).
		Updates(map[string]any{
			"status":              models.DeviceCodeStatusApproved,
			"approved_by_user_id": userID,
			"approved_at":         now,
			"updated_at":          now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// ConsumeDeviceCode moves an approved record to consumed.
func (s *Store) ConsumeDeviceCode(ctx context.Context, id int64, now time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.DeviceCode{}).
		Where("id = ? AND status = ? AND expires_at > ?", id, models.DeviceCodeStatusApproved, now).
		Updates(map[string]any{
			"status":      models.DeviceCodeStatusConsumed,
			"consumed_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

// DeleteExpiredDeviceCodes removes records that expired before the cutoff.
func (s *Store) DeleteExpiredDeviceCodes(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.DeviceCode{})
	return result.RowsAffected, result.Error
}

// CountPendingDeviceCodes counts unexpired records still waiting for approval.
func (s *Store) CountPendingDeviceCodes() (int64, error) {
	var count int64
	err := s.db.Model(&models.DeviceCode{}).
		Where("status = ? AND expires_at > ?", models.DeviceCodeStatusPending, time.Now()).
		Count(&count).Error
	return count, err
}

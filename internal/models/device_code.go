package models

import (
	"time"
)

// DeviceCodeStatus is the lifecycle state of a pairing record.
type DeviceCodeStatus string

const (
	DeviceCodeStatusPending  DeviceCodeStatus = "pending"
	DeviceCodeStatusApproved DeviceCodeStatus = "approved"
	DeviceCodeStatusConsumed DeviceCodeStatus = "consumed"
)

type DeviceCode struct {
	ID               int64            `gorm:"primaryKey;autoIncrement"`
	DeviceCode       string           `gorm:"-"`                    // Not stored in DB, only for in-memory use
	DeviceCodeHash   string           `gorm:"uniqueIndex;not null"` // PBKDF2 hash of device code
	DeviceCodeSalt   string           `gorm:"not null"`
	DeviceCodeID     string           `gorm:"index;not null"` // Last 8 chars for quick lookup
	UserCode         string           `gorm:"index;not null"` // XXXX-NNNN, stored with the dash
	Status           DeviceCodeStatus `gorm:"type:varchar(16);index;not null;default:pending"`
	Interval         int              `gorm:"not null"`
	ExpiresAt        time.Time        `gorm:"index;not null"`
	ApprovedByUserID string           `gorm:"type:varchar(255)"`
	ApprovedAt       *time.Time
	ConsumedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsExpired reports whether the record is expired at now. A record expires at
// ExpiresAt exactly and accepts no transitions afterwards, whatever its
// stored status.
func (d *DeviceCode) IsExpired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}

func (d *DeviceCode) IsPending() bool {
	return d.Status == DeviceCodeStatusPending
}


package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONMap stores free-form client event data as a JSON column.
type JSONMap map[string]any

// Value implements the driver.Valuer interface for database storage
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil //nolint:nilnil // nil driver.Value represents SQL NULL
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONMap value: %v", value)
	}

	result := make(JSONMap)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// UsageLog is a client-reported usage event.
type UsageLog struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"     json:"id"`
	UserID    string    `gorm:"type:varchar(255);index;not null" json:"user_id"`
	Event     string    `gorm:"type:varchar(100);index;not null" json:"event"`
	Level     string    `gorm:"type:varchar(16);not null"       json:"level"`
	Data      JSONMap   `gorm:"type:text"                       json:"data,omitempty"`
	UserAgent string    `gorm:"type:varchar(500)"               json:"user_agent,omitempty"`
	ClientIP  string    `gorm:"type:varchar(45)"                json:"client_ip,omitempty"`
	CreatedAt time.Time `gorm:"index"                           json:"created_at"`
}

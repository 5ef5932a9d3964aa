package models

import "time"

// EventType represents the type of audit event
type EventType string

const (
	// Device pairing events
	EventDeviceCodeIssued   EventType = "DEVICE_CODE_ISSUED"
	EventDeviceCodeApproved EventType = "DEVICE_CODE_APPROVED"
	EventDeviceCodeConsumed EventType = "DEVICE_CODE_CONSUMED"
	EventAppTokenIssued     EventType = "APP_TOKEN_ISSUED"

	// Remote session events
	EventSessionCreated EventType = "SESSION_CREATED"
	EventSessionJoined  EventType = "SESSION_JOINED"
	EventSessionClosed  EventType = "SESSION_CLOSED"

	// Security events
	EventRateLimitExceeded EventType = "RATE_LIMIT_EXCEEDED"
	EventPairingConflict   EventType = "PAIRING_CONFLICT"
)

// EventSeverity represents the severity level of an audit event
type EventSeverity string

const (
	SeverityInfo    EventSeverity = "INFO"
	SeverityWarning EventSeverity = "WARNING"
	SeverityError   EventSeverity = "ERROR"
)

// ResourceType represents the type of resource being operated on
type ResourceType string

const (
	ResourceDeviceCode    ResourceType = "DEVICE_CODE"
	ResourceRemoteSession ResourceType = "REMOTE_SESSION"
	ResourceAppToken      ResourceType = "APP_TOKEN"
	ResourceEndpoint      ResourceType = "ENDPOINT"
)

// AuditLog is an immutable record of a pairing or session state change.
type AuditLog struct {
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	EventType EventType     `gorm:"type:varchar(50);index;not null" json:"event_type"`
	EventTime time.Time     `gorm:"index;not null"                  json:"event_time"`
	Severity  EventSeverity `gorm:"type:varchar(20);not null"       json:"severity"`

	ActorUserID string `gorm:"type:varchar(255);index" json:"actor_user_id"`
	ActorIP     string `gorm:"type:varchar(45)"        json:"actor_ip"`

	ResourceType ResourceType `gorm:"type:varchar(50);index" json:"resource_type"`
	ResourceID   string       `gorm:"type:varchar(255)"      json:"resource_id"`

	Action       string  `gorm:"type:varchar(255);not null" json:"action"`
	Details      JSONMap `gorm:"type:text"                  json:"details,omitempty"`
	Success      bool    `gorm:"index"                      json:"success"`
	ErrorMessage string  `gorm:"type:text"                  json:"error_message,omitempty"`

	RequestPath   string `gorm:"type:varchar(500)" json:"request_path,omitempty"`
	RequestMethod string `gorm:"type:varchar(10)"  json:"request_method,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

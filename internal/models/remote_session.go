package models

import "time"

// SessionState is the lifecycle state of a remote session.
type SessionState string

const (
	SessionStatePending   SessionState = "pending"
	SessionStateConnected SessionState = "connected"
	SessionStateClosed    SessionState = "closed"
)

// SessionRole is the side a participant plays in a remote session.
type SessionRole string

const (
	RoleController SessionRole = "controller"
	RoleHost       SessionRole = "host"
)

// Valid reports whether r is one of the two bindable roles.
func (r SessionRole) Valid() bool {
	return r == RoleController || r == RoleHost
}

// Column returns the remote_sessions column that stores the role binding.
func (r SessionRole) Column() string {
	if r == RoleHost {
		return "host_user"
	}
	return "controller_user"
}

// Other returns the complementary role.
func (r SessionRole) Other() SessionRole {
	if r == RoleHost {
		return RoleController
	}
	return RoleHost
}

// RemoteSession is a short-lived controller/host pairing. Empty user
// fields mean the role is unbound.
type RemoteSession struct {
	ID             string       `gorm:"primaryKey;type:varchar(36)"                  json:"sessionId"`
	Code6          string       `gorm:"type:varchar(6);index;not null"               json:"code6"`
	State          SessionState `gorm:"type:varchar(16);index;not null;default:pending" json:"state"`
	OwnerUser      string       `gorm:"type:varchar(255);not null"                   json:"owner"`
	ControllerUser string       `gorm:"type:varchar(255);not null;default:''"        json:"controller,omitempty"`
	HostUser       string       `gorm:"type:varchar(255);not null;default:''"        json:"host,omitempty"`
	ExpiresAt      time.Time    `gorm:"index;not null"                               json:"expires_at"`
	CreatedAt      time.Time    `json:"created_at"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	ClosedAt       *time.Time   `json:"closed_at,omitempty"`
}

// BoundUser returns the identity bound to role, or "".
func (s *RemoteSession) BoundUser(role SessionRole) string {
	if role == RoleHost {
		return s.HostUser
	}
	return s.ControllerUser
}

// IsParticipant reports whether userID is the owner or bound to either role.
func (s *RemoteSession) IsParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	return s.OwnerUser == userID || s.ControllerUser == userID || s.HostUser == userID
}

// IsJoinable reports whether a join may still bind a role. Connected
// sessions stay joinable so a participant can rejoin; pending sessions
// only until their join window ends.
func (s *RemoteSession) IsJoinable(now time.Time) bool {
	switch s.State {
	case SessionStateConnected:
		return true
	case SessionStatePending:
		return now.Before(s.ExpiresAt)
	default:
		return false
	}
}

package services

import "errors"

// Error kinds returned by the services. Handlers map them to HTTP status
// codes with errors.Is; specific errors wrap one of these.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrExpired        = errors.New("expired")
	ErrDatabase       = errors.New("database error")
	ErrServer         = errors.New("server error")
)

var (
	ErrDeviceCodeNotFound = errorf(ErrNotFound, "device code not found")
	ErrDeviceCodeExpired  = errorf(ErrExpired, "device code expired")
	ErrDeviceCodeUsed     = errorf(ErrConflict, "device code already approved")
	ErrSessionNotFound    = errorf(ErrNotFound, "session not found")
	ErrRoleTaken          = errorf(ErrConflict, "role already bound to another user")
	ErrNotParticipant     = errorf(ErrForbidden, "not a participant of this session")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func errorf(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

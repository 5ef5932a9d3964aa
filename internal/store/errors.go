package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrStaleState is returned by conditional updates that matched no row
	// because another request changed the record first.
	ErrStaleState = errors.New("record state changed concurrently")
)

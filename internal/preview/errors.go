package preview

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidInput covers malformed requests: bad paths, missing entry,
	// limits exceeded.
	ErrInvalidInput = errors.New("invalid preview input")

	ErrTooManyFiles  = errors.New("too many files")
	ErrTooLarge      = errors.New("total source size exceeds limit")
	ErrInvalidPath   = errors.New("invalid file path")
	ErrEntryNotFound = errors.New("entry file not found")
)

// CompileError carries the bundler's error messages.
type CompileError struct {
	Messages []string
}

func (e *CompileError) Error() string {
	return "compile failed: " + strings.Join(e.Messages, "; ")
}

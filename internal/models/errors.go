package models

import "errors"

// Error kinds shared by services and handlers. Services wrap these with
// a descriptive message; handlers map them to HTTP status codes via
// errors.Is.
var (
	// ErrInvalid marks malformed input rejected before any mutation.
	ErrInvalid = errors.New("invalid input")

	// ErrNotFound marks an unknown book, group, phrase or word.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a duplicate identity or membership.
	ErrConflict = errors.New("already exists")
)

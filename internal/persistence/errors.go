package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint,
	// including the per-slot claim guard.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned for other integrity failures.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)

package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrDuplicateName         = errors.New("duplicate name")
	ErrHasDependents         = errors.New("entity has dependent players")
	ErrConflictingState      = errors.New("conflicting state transition")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

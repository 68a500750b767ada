package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNoResolution          = errors.New("no resolution")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

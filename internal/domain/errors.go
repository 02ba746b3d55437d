package domain

import "errors"

// Error kinds surfaced at the boundary. Stores and services wrap these so
// callers can classify failures with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("already exists")
	ErrInternal     = errors.New("internal failure")
)

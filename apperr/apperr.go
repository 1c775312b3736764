// Package apperr holds the error taxonomy shared by the models, services and
// handlers packages. Callers wrap these sentinels with context and test them
// with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateIdentity = errors.New("username or email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrInvalidRole       = errors.New("actor lacks the required role")
	ErrInvalidFormat     = errors.New("invalid format")

	// ErrStaleState is returned when a guarded transition finds the record
	// in a status other than the one the transition expects.
	ErrStaleState = errors.New("stale state")
)

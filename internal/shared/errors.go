package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrIdempotencyConflict indicates the request key was already processed.
	ErrIdempotencyConflict = errors.New("idempotent request already processed")
)

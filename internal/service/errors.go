package service

import "errors"

// Shared error taxonomy surfaced by every mutation gateway. Handlers map
// these to HTTP statuses with errors.Is.
var (
	ErrNotAuthenticated = errors.New("no authenticated user")
	ErrValidationFailed = errors.New("validation failed")
	ErrDuplicateTitle   = errors.New("an active plan with this title already exists")
	ErrNotFound         = errors.New("resource not found")
	// ErrRemoteWrite marks store failures that happened after validation
	// passed; the caller may retry. Optimistic cache state has already been
	// rolled back by the time this surfaces.
	ErrRemoteWrite  = errors.New("remote write failed")
	ErrAccessDenied = errors.New("access denied")
)

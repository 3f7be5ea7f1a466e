package feed

import "errors"

// Sentinel errors for feed use case operations.
var (
	// ErrProfileNotFound indicates that the requested profile does not exist.
	// This is the only failure the serving endpoint surfaces to callers.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidProfileID indicates that the provided profile ID is invalid.
	// Profile IDs must be positive integers.
	ErrInvalidProfileID = errors.New("invalid profile ID")
)

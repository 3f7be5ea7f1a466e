package event

import "errors"

// Sentinel errors for event ingestion.
var (
	// ErrEmptyBatch indicates an impression batch with no entries.
	ErrEmptyBatch = errors.New("empty impression batch")

	// ErrBatchTooLarge indicates an impression batch above the accepted size.
	ErrBatchTooLarge = errors.New("impression batch too large")
)

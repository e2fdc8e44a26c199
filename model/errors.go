package model

import "errors"

// Common errors surfaced by the ingestion pipeline.
// Locally recovered conditions (topic fit failure, empty segmentation) are
// not errors; they downgrade to warnings and a reduced result.
var (
	// ErrInputRejected is returned for empty or otherwise unusable input.
	ErrInputRejected = errors.New("input rejected")
	// ErrPersistence is returned when a merge batch could not be persisted
	// after retries. The project graph is unchanged in that case.
	ErrPersistence = errors.New("persistence failed")
	// ErrCancelled is returned when ingestion was cancelled before the
	// merge started. No partial state is written.
	ErrCancelled = errors.New("ingestion cancelled")
)

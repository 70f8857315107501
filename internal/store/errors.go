package store

import "errors"

var (
	// ErrNotFound is returned by Load when no room with the given id exists.
	ErrNotFound = errors.New("store: room not found")
	// ErrVersionConflict is returned by Save when expectedVersion no longer
	// matches the persisted document (spec §4.3 optimistic concurrency).
	ErrVersionConflict = errors.New("store: version conflict")
	// ErrRetryExhausted surfaces spec §7's ConflictRetryExhausted kind after
	// all three of UpdateRoom's save attempts hit a version conflict.
	ErrRetryExhausted = errors.New("store: optimistic update retries exhausted")
)

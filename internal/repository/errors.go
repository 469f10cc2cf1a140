package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an update carries a stale version.
	ErrConflict = errors.New("entity was modified concurrently")

	// ErrStoreUnavailable is returned when the backing store cannot be read or written.
	ErrStoreUnavailable = errors.New("store unavailable")
)

package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the given filter.
	// For tasks the filter always combines id and owner, so a foreign-owned
	// row and a nonexistent row are indistinguishable here on purpose.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a unique constraint rejects a write.
	ErrConflict = errors.New("conflict")
)

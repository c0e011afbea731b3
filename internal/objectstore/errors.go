package objectstore

import "errors"

var (
	// ErrNotFound signals that the requested key does not exist.
	ErrNotFound = errors.New("object not found")
	// ErrTooLarge is returned when an object exceeds the inline read limit.
	ErrTooLarge = errors.New("object too large to read inline")
	// ErrStoreUnavailable wraps connectivity, credential and bucket failures.
	ErrStoreUnavailable = errors.New("object store unavailable")
)

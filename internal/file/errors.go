package file

import "errors"

var (
	// ErrFileNotFound signals that no object exists at the requested key.
	ErrFileNotFound = errors.New("file not found")
)

package activity

import "errors"

var (
	ErrUnknownKind  = errors.New("unknown activity kind")
	ErrUserNotFound = errors.New("user not found")
)

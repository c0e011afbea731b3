package auth

import "errors"

var (
	// ErrUserAlreadyExists indicates the username or email is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveUser is returned when a deactivated account tries to log in.
	ErrInactiveUser = errors.New("account is deactivated")
	// ErrUserNotFound signals that the user could not be located.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized represents missing or invalid authentication tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidRole is returned for roles outside user|admin.
	ErrInvalidRole = errors.New("invalid role")
	// ErrWeakPassword is returned when a new password is outside the accepted length.
	ErrWeakPassword = errors.New("password must be between 8 and 72 characters")
)

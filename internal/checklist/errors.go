package checklist

import "errors"

var (
	// ErrChecklistNotFound signals a missing checklist or one owned by another user.
	ErrChecklistNotFound = errors.New("checklist not found")
	// ErrUnknownType is returned for checklist types other than opening and closing.
	ErrUnknownType = errors.New("unknown checklist type")
	// ErrUnknownItem is returned when a patch names an item outside the checklist's type.
	ErrUnknownItem = errors.New("unknown checklist item")
	// ErrNoItems is returned for an empty item patch.
	ErrNoItems = errors.New("at least one item is required")
	// ErrInvalidStatus is returned for statuses outside the enumeration.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrConfirmationRequired is returned when completing without a confirmation.
	ErrConfirmationRequired = errors.New("overall confirmation is required")
)

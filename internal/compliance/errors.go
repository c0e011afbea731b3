package compliance

import (
	"errors"
	"strings"

	"github.com/infinityfire/api/internal/respond"
)

var (
	// ErrTestNotFound signals a missing test or one owned by another user.
	ErrTestNotFound = errors.New("test not found")
	// ErrInvalidStatus is returned for statuses outside the enumeration.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrTransitionNotAllowed is returned when the transition table forbids a move.
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
)

// ValidationError lists every offending field of a request.
type ValidationError struct {
	Fields []respond.FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "invalid fields: " + strings.Join(names, ", ")
}

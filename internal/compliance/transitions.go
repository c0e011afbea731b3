package compliance

import "fmt"

// validTransitions is the status matrix. Every move between known statuses is
// currently allowed, including re-opening a completed or failed test.
var validTransitions = map[Status]map[Status]bool{
	StatusPending:   {StatusPending: true, StatusCompleted: true, StatusFailed: true},
	StatusCompleted: {StatusPending: true, StatusCompleted: true, StatusFailed: true},
	StatusFailed:    {StatusPending: true, StatusCompleted: true, StatusFailed: true},
}

// ValidateTransition checks that to is a known status reachable from from.
func ValidateTransition(from, to Status) error {
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !validTransitions[from][to] {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	return nil
}

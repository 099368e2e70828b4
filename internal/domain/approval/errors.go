package approval

import "errors"

var (
	// ErrNotFound is returned when a referenced expense, rule or user does
	// not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the actor is not the owner of the
	// expense, or has no matching pending approval step.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned when an operation is attempted against an
	// expense in the wrong status.
	ErrInvalidState = errors.New("invalid expense state")

	// ErrConfiguration is returned when no rule matches and no fallback
	// approver exists. It indicates an administrative gap, not a bug.
	ErrConfiguration = errors.New("approval configuration error")

	// ErrConflict is returned when a concurrent mutation is detected on
	// write; the caller should retry with fresh data.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation error")
)

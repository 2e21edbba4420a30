package pos

import "errors"

// Domain errors surfaced by the order state machine. The HTTP layer maps
// them onto status codes in one place.
var (
	// ErrNotFound means the referenced table, product or order does not
	// exist within the tenant.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the write lost against current state: the table is
	// already occupied, the order is terminal, or the version token is
	// stale.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition means the requested status is not reachable from
	// the order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation means the input payload is malformed.
	ErrValidation = errors.New("validation failed")
)

package pos

// Order lifecycle statuses. An order only moves forward through the fixed
// sequence, or into cancelled from any non-terminal status.
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusServed    = "served"
	StatusPaid      = "paid"
	StatusCancelled = "cancelled"
)

// next maps each status onto its sole forward successor.
var next = map[string]string{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusServed,
	StatusServed:    StatusPaid,
}

// IsStatus reports whether s is a known order status.
func IsStatus(s string) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusServed, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether an order in status s is immutable.
func IsTerminal(s string) bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransition reports whether from → to is a legal move: one step forward
// along the fixed sequence, or into cancelled from any non-terminal status.
func CanTransition(from, to string) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return next[from] == to
}

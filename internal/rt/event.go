package rt

// Event names carried over the realtime channel. Payloads are always the
// full updated document, never a diff; a client that missed events recovers
// by re-fetching over the CRUD surface.
const (
	EventOrderCreated  = "order_created"
	EventOrderUpdated  = "order_updated"
	EventTableCalling  = "table_calling"
	EventTableResolved = "table_resolved"
)

// Event is one named message to a tenant audience.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Sender is the transport handle handed to anything that needs to emit.
// Broadcast is fire-and-forget: delivery to a disconnected or slow member is
// silently dropped.
type Sender interface {
	Broadcast(restaurantID int64, event Event)
}

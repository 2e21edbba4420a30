package rt

import (
	"encoding/json"
	"log"
	"sync"

	"restaurant-pos-backend/internal/auth"
)

// Hub tracks connected staff sockets grouped by tenant and fans events out
// to one tenant group at a time. A connection belongs to exactly one group,
// decided by its verified principal at registration.
type Hub struct {
	mu     sync.RWMutex
	groups map[int64]map[*Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{groups: make(map[int64]map[*Conn]struct{})}
}

// Register adds a connection to its tenant group.
func (h *Hub) Register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[c.principal.RestaurantID]
	if !ok {
		group = make(map[*Conn]struct{})
		h.groups[c.principal.RestaurantID] = group
	}
	group[c] = struct{}{}
}

// Unregister removes a connection and closes its send buffer. Safe to call
// more than once.
func (h *Hub) Unregister(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[c.principal.RestaurantID]
	if !ok {
		return
	}
	if _, ok := group[c]; !ok {
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.groups, c.principal.RestaurantID)
	}
	close(c.send)
}

// Broadcast delivers the event to every connection in the tenant group.
// A member whose send buffer is full is dropped rather than blocking the
// caller; it will reconnect and re-fetch like any other stale client.
func (h *Hub) Broadcast(restaurantID int64, event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", event.Name, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	group := h.groups[restaurantID]
	for c := range group {
		select {
		case c.send <- message:
		default:
			delete(group, c)
			close(c.send)
		}
	}
	if len(group) == 0 {
		delete(h.groups, restaurantID)
	}
}

// GroupSize returns the number of live connections in a tenant group.
func (h *Hub) GroupSize(restaurantID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[restaurantID])
}

// newConn builds a registered-but-unstarted connection. Split out so hub
// tests can exercise group routing without a websocket.
func newConn(p auth.Principal, bufferSize int) *Conn {
	return &Conn{
		principal: p,
		send:      make(chan []byte, bufferSize),
	}
}

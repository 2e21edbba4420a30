package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification categories.
const (
	CategoryAlert   = "alert"
	CategorySuccess = "success"
)

// Notification is one surfaced alert. Ephemeral and local: it exists from
// receipt until the user dismisses it, and is never sent back to the server.
type Notification struct {
	ID          string    `json:"id"`
	TableNumber int       `json:"tableNumber"`
	Message     string    `json:"message"`
	Category    string    `json:"category"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

// envelope mirrors the wire shape of a routed event.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// orderPayload and tablePayload pick out the fields the surfacing rules
// need from the full documents the server broadcasts.
type orderPayload struct {
	TableNumber int    `json:"tableNumber"`
	Status      string `json:"status"`
}

type tablePayload struct {
	TableNumber int `json:"tableNumber"`
}

// Feed converts inbound routed events into a short-lived, user-manageable
// alert queue, most recent first. The feed is a presentation derivative of
// events, never authoritative over order state.
type Feed struct {
	mu            sync.Mutex
	registry      *Registry
	notifications []Notification
	now           func() time.Time
}

// NewFeed creates a feed filtered by the device's subscription registry.
func NewFeed(registry *Registry) *Feed {
	return &Feed{registry: registry, now: time.Now}
}

// Apply runs the surfacing rules on one raw event message:
//   - table_calling surfaces when the table is watched;
//   - order_updated surfaces when the table is watched AND the new status is
//     ready, the one transition staff must act on urgently.
//
// Everything else is ignored. Returns the surfaced notification, if any.
func (f *Feed) Apply(message []byte) (*Notification, error) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}

	switch env.Event {
	case "table_calling":
		var p tablePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("malformed table_calling payload: %w", err)
		}
		if !f.registry.Watching(p.TableNumber) {
			return nil, nil
		}
		return f.push(p.TableNumber, fmt.Sprintf("Table %d needs help!", p.TableNumber), CategoryAlert), nil

	case "order_updated":
		var p orderPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("malformed order_updated payload: %w", err)
		}
		if p.Status != "ready" || !f.registry.Watching(p.TableNumber) {
			return nil, nil
		}
		return f.push(p.TableNumber, fmt.Sprintf("Order for table %d is ready!", p.TableNumber), CategorySuccess), nil
	}

	return nil, nil
}

func (f *Feed) push(tableNumber int, message, category string) *Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := Notification{
		ID:          uuid.NewString(),
		TableNumber: tableNumber,
		Message:     message,
		Category:    category,
		ReceivedAt:  f.now(),
	}
	f.notifications = append([]Notification{n}, f.notifications...)
	return &n
}

// Dismiss removes one notification by id. There is no automatic expiry.
func (f *Feed) Dismiss(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, n := range f.notifications {
		if n.ID == id {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return
		}
	}
}

// Notifications returns the current feed, most recent first.
func (f *Feed) Notifications() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

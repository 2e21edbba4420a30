// Package client implements the staff-terminal side of the realtime feed:
// the locally persisted table subscription set, the notification feed built
// from inbound events, and the websocket connection that feeds it.
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Registry is the set of table numbers this device watches. It is a purely
// local filter: the server broadcasts tenant-wide and the registry decides
// which alerts surface here. Persisted synchronously on every toggle so it
// survives restarts.
type Registry struct {
	mu     sync.Mutex
	path   string
	tables []int
}

// NewRegistry loads the watched-table set from path, starting empty when
// the file does not exist yet.
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	if err := json.Unmarshal(data, &r.tables); err != nil {
		return nil, fmt.Errorf("registry file is corrupt: %w", err)
	}
	sort.Ints(r.tables)
	return r, nil
}

// Toggle flips membership of a table number, keeping the set in ascending
// order, and persists the result before returning.
func (r *Registry) Toggle(tableNumber int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := sort.SearchInts(r.tables, tableNumber)
	if idx < len(r.tables) && r.tables[idx] == tableNumber {
		r.tables = append(r.tables[:idx], r.tables[idx+1:]...)
	} else {
		r.tables = append(r.tables, tableNumber)
		sort.Ints(r.tables)
	}

	return r.save()
}

// Watching reports whether the table is in the set.
func (r *Registry) Watching(tableNumber int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := sort.SearchInts(r.tables, tableNumber)
	return idx < len(r.tables) && r.tables[idx] == tableNumber
}

// Tables returns a copy of the watched set in ascending order.
func (r *Registry) Tables() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, len(r.tables))
	copy(out, r.tables)
	return out
}

func (r *Registry) save() error {
	data, err := json.Marshal(r.tables)
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to persist registry: %w", err)
	}
	return nil
}

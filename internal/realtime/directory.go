package realtime

import (
	"context"
	"sync"
)

// MemoryDirectory keeps the latest connection per user for a single instance.
type MemoryDirectory struct {
	mu    sync.RWMutex
	conns map[string]string
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{conns: make(map[string]string)}
}

func (d *MemoryDirectory) Register(_ context.Context, userID, connID string) error {
	d.mu.Lock()
	d.conns[userID] = connID
	d.mu.Unlock()
	return nil
}

// Unregister is a no-op when the user has since reconnected elsewhere.
func (d *MemoryDirectory) Unregister(_ context.Context, userID, connID string) error {
	d.mu.Lock()
	if d.conns[userID] == connID {
		delete(d.conns, userID)
	}
	d.mu.Unlock()
	return nil
}

func (d *MemoryDirectory) Lookup(_ context.Context, userID string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.conns[userID]
	return id, ok, nil
}

// Package storage persists the task and category snapshot to durable
// key-value slots.
package storage

import (
	"context"
	"sync"
)

// Slot keys of the persisted snapshot.
const (
	TasksKey      = "simpleTasks"
	CategoriesKey = "simpleCategories"
)

// SlotStore is a durable key-value store holding one JSON document per key.
type SlotStore interface {
	// Get returns the stored value; ok is false when the key was never set.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// MemorySlots keeps slots in process memory. Used for tests and the
// "memory" storage setting.
type MemorySlots struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{slots: map[string][]byte{}}
}

func (m *MemorySlots) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemorySlots) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.slots[key] = v
	return nil
}

func (m *MemorySlots) Close() error { return nil }

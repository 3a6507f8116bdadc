package storage

import (
	"context"
	"sync"
)

// StorageEvent announces that another instance rewrote key. An empty NewValue
// means the key was removed.
type StorageEvent struct {
	Key      string `json:"key"`
	NewValue string `json:"newValue"`
	Origin   string `json:"origin"`
}

// Notifier fans storage events out to every instance sharing a storage area.
type Notifier interface {
	Notify(ctx context.Context, ev StorageEvent) error
	Subscribe(ctx context.Context, key string, fn func(StorageEvent)) (func(), error)
}

// MemoryNotifier delivers events synchronously to subscribers in the same
// process. Instances sharing one MemoryBackend share one MemoryNotifier.
type MemoryNotifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(StorageEvent)
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[string]map[int]func(StorageEvent))}
}

func (n *MemoryNotifier) Notify(_ context.Context, ev StorageEvent) error {
	n.mu.RLock()
	handlers := make([]func(StorageEvent), 0, len(n.subs[ev.Key]))
	for _, fn := range n.subs[ev.Key] {
		handlers = append(handlers, fn)
	}
	n.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
	return nil
}

func (n *MemoryNotifier) Subscribe(_ context.Context, key string, fn func(StorageEvent)) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	if n.subs[key] == nil {
		n.subs[key] = make(map[int]func(StorageEvent))
	}
	n.subs[key][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[key], id)
	}, nil
}

package orchestrator

import (
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
)

// keyedMutex hands out one mutex per batch id. Entries are dropped once no
// goroutine holds or waits for them.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[kernel.UUID]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[kernel.UUID]*keyedEntry)}
}

// Lock blocks until the key is free and returns its unlock function.
func (k *keyedMutex) Lock(key kernel.UUID) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

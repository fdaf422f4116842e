package store

import (
	"errors"
	"sync"
)

// ErrKeyNotFound is returned by Backend.Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// Backend is a string key-value persistence capability.
//
// Available reports whether the backend can be used in the current execution
// context. When it returns false the Store skips both reads and writes.
type Backend interface {
	Available() bool
	Get(key string) (string, error)
	Set(key, value string) error
}

// MemoryBackend keeps values in process memory. The zero value is ready to use.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string
	writes int

	// SetErr, when non-nil, is returned by every Set call (and the value is not stored).
	SetErr error
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (b *MemoryBackend) Available() bool { return true }

func (b *MemoryBackend) Get(key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (b *MemoryBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SetErr != nil {
		return b.SetErr
	}
	if b.values == nil {
		b.values = map[string]string{}
	}
	b.values[key] = value
	b.writes++
	return nil
}

// Writes returns the number of successful Set calls.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

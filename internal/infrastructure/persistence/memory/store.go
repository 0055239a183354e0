// Package memory provides an in-process key-value store
package memory

import (
	"context"
	"sync"

	"github.com/nutrismart/planner/internal/ports/outbound"
)

// Store keeps documents in a map. Values are copied on the way in and out
// so callers cannot alias stored bytes.
type Store struct {
	data  map[string][]byte
	mutex sync.RWMutex
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get retrieves a value
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, exists := s.data[key]
	if !exists {
		return nil, outbound.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set stores a value, replacing any previous one
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes a key
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Keys returns the stored keys. It is used for inspection in tests.
func (s *Store) Keys() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

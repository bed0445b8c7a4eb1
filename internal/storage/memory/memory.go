package memory

import (
	"context"
	"sync"
)

// Store is an in-process KV used for tests and the "memory" backend.
type Store struct {
	mu    sync.Mutex
	items map[string][]byte
}

func New() *Store {
	return &Store{items: map[string][]byte{}}
}

// NewWith returns a store seeded with a single key.
func NewWith(key string, value []byte) *Store {
	s := New()
	s.items[key] = append([]byte(nil), value...)
	return s
}

// Get implements storage.KV
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements storage.KV
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), value...)
	return nil
}

// Ping implements storage.Pinger
func (s *Store) Ping(context.Context) error { return nil }

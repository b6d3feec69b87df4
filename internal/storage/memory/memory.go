// Package memory implements an in-memory key-value storage for tests and
// ephemeral sessions.
package memory

import (
	"context"
	"sync"

	"samfilms/client/internal/storage"
)

type Storage struct {
	mu     sync.Mutex
	values map[string][]byte
}

func New() *Storage {
	return &Storage{values: make(map[string][]byte)}
}

func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Storage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *Storage) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

// Wipe drops every key, like a user clearing site data by hand.
func (s *Storage) Wipe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string][]byte)
}

func (s *Storage) Close() error {
	return nil
}

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
)

// Store keeps encoded JSON in process memory, the same bytes a browser would hold in local storage.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(_ context.Context, key string, value any) (bool, error) {

	s.mu.RLock()
	data, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal value for key %s: %w: %w", key, storage.ErrCorrupt, err)
	}

	return true, nil
}

func (s *Store) Set(_ context.Context, key string, value any) error {

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	s.mu.Lock()
	s.data[key] = data
	s.mu.Unlock()

	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {

	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()

	return nil
}

// SetRaw stores bytes verbatim, bypassing encoding.
func (s *Store) SetRaw(key string, data []byte) {
	s.mu.Lock()
	s.data[key] = append([]byte(nil), data...)
	s.mu.Unlock()
}

// Raw returns the stored bytes for key.
func (s *Store) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]

	return append([]byte(nil), data...), ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

func (s *Store) Close() error {
	return nil
}

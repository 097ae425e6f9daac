package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"listing-assistant/internal/application/port/output"
)

var _ output.KeyValueStore = (*MemoryStore)(nil)

// MemoryStore is a process-local KeyValueStore. Values round-trip through
// JSON so callers observe the same copying semantics as FileStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[output.Scope]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[output.Scope]map[string][]byte),
	}
}

func (s *MemoryStore) Get(_ context.Context, scope output.Scope, key string, dst any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[scope][key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", scope, key, err)
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, scope output.Scope, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", scope, key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[scope] == nil {
		s.data[scope] = make(map[string][]byte)
	}
	s.data[scope][key] = raw
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, scope output.Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[scope], key)
	return nil
}

// Len reports how many keys a scope holds.
func (s *MemoryStore) Len(scope output.Scope) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[scope])
}

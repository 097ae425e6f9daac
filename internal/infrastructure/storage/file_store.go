package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"listing-assistant/internal/application/port/output"
)

var _ output.KeyValueStore = (*FileStore)(nil)

// FileStore keeps one JSON document per scope under dir. Each write rewrites
// the scope file through a temp file and rename.
type FileStore struct {
	mu     sync.Mutex
	dir    string
	scopes map[output.Scope]map[string]json.RawMessage
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:    dir,
		scopes: make(map[output.Scope]map[string]json.RawMessage),
	}
}

func (s *FileStore) Get(_ context.Context, scope output.Scope, key string, dst any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(scope)
	if err != nil {
		return false, err
	}

	raw, ok := entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", scope, key, err)
	}
	return true, nil
}

func (s *FileStore) Set(_ context.Context, scope output.Scope, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(scope)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", scope, key, err)
	}
	entries[key] = data

	return s.flush(scope, entries)
}

func (s *FileStore) Remove(_ context.Context, scope output.Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(scope)
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)

	return s.flush(scope, entries)
}

func (s *FileStore) path(scope output.Scope) string {
	return filepath.Join(s.dir, string(scope)+".json")
}

// load must be called with mu held.
func (s *FileStore) load(scope output.Scope) (map[string]json.RawMessage, error) {
	if entries, ok := s.scopes[scope]; ok {
		return entries, nil
	}

	entries := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path(scope))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read %s store: %w", scope, err)
	default:
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode %s store: %w", scope, err)
		}
	}

	s.scopes[scope] = entries
	return entries, nil
}

func (s *FileStore) flush(scope output.Scope, entries map[string]json.RawMessage) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s store: %w", scope, err)
	}

	tmp, err := os.CreateTemp(s.dir, string(scope)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s store: %w", scope, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s store: %w", scope, err)
	}

	if err := os.Rename(tmp.Name(), s.path(scope)); err != nil {
		return fmt.Errorf("replace %s store: %w", scope, err)
	}
	return nil
}

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys under which the two session tokens are persisted. Each key has a
// single owner: the visitor gate writes VisitorKey, admin auth writes AdminKey.
const (
	VisitorKey = "restaurant_session"
	AdminKey   = "admin_session"
)

// Store persists opaque session tokens. Get reports false when the key is
// absent; absence means "not authenticated".
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, token string) error
	Delete(key string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[key]
	return token, ok, nil
}

func (s *MemoryStore) Set(key, token string) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = token
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}

// FileStore keeps tokens in a small JSON object on disk, readable only by
// the owner. Every call rereads the file so separate CLI invocations see
// each other's writes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return "", false, err
	}
	token, ok := tokens[key]
	return token, ok && token != "", nil
}

func (s *FileStore) Set(key, token string) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return err
	}
	tokens[key] = token
	return s.save(tokens)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := tokens[key]; !ok {
		return nil
	}
	delete(tokens, key)
	return s.save(tokens)
}

func (s *FileStore) load() (map[string]string, error) {
	tokens := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return tokens, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", s.path, err)
	}
	return tokens, nil
}

func (s *FileStore) save(tokens map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("session: replace: %w", err)
	}
	return nil
}

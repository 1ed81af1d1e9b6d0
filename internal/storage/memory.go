package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process blob store for tests and local development.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	// FailStores makes Store return an error, exercising the non-fatal
	// attachment path.
	FailStores bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Store(_ context.Context, _ string, payload []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailStores {
		return "", fmt.Errorf("memory store: stores disabled")
	}
	key := uuid.NewString()
	s.objects[key] = append([]byte(nil), payload...)
	return key, nil
}

func (s *MemoryStore) SignedURL(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("memory store: no object %q", key)
	}
	return "memory://" + key, nil
}

// Get returns a stored payload; test helper.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, ok
}

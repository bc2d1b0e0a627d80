package blob

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps uploads in a map; used when no bucket is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	key = strings.TrimLeft(key, "/")

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf

	return "memory://" + key, nil
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[strings.TrimLeft(key, "/")]
	return data, ok
}

package dashboard

import (
	"context"
	"sync"
)

// DefaultStorageKey is the key the researcher dashboard layout is persisted under.
const DefaultStorageKey = "researcherDashboardWidgets"

// LayoutStore persists serialized widget collections as a whole, one value per key.
// Load returns ErrLayoutNotFound when nothing is stored under key.
type LayoutStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// ScopedKey derives the storage key for a viewer. Anonymous viewers share the base key.
func ScopedKey(base string, viewer ViewerContext) string {
	if base == "" {
		base = DefaultStorageKey
	}
	if viewer.UserID == "" {
		return base
	}
	return base + "::" + viewer.UserID
}

// InMemoryLayoutStore provides a concurrency-safe store useful for tests and demos.
type InMemoryLayoutStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryLayoutStore creates an empty store.
func NewInMemoryLayoutStore() *InMemoryLayoutStore {
	return &InMemoryLayoutStore{data: make(map[string][]byte)}
}

// Load returns a copy of the stored payload.
func (s *InMemoryLayoutStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.data[key]
	if !ok {
		return nil, ErrLayoutNotFound
	}
	return append([]byte(nil), payload...), nil
}

// Save replaces the payload stored under key.
func (s *InMemoryLayoutStore) Save(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), payload...)
	return nil
}

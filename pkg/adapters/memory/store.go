package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/aretw0/blueprint/pkg/domain"
)

// ErrQuotaExceeded is returned when a write would exceed the configured quota.
var ErrQuotaExceeded = errors.New("draft storage quota exceeded")

// Store implements ports.DraftStore in memory.
// Safe for concurrent use.
type Store struct {
	data  map[string][]byte
	quota int
	used  int
	mu    sync.RWMutex
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithQuota limits the total number of bytes the store may hold, like browser local storage.
// Zero means unlimited.
func WithQuota(bytes int) StoreOption {
	return func(s *Store) {
		s.quota = bytes
	}
}

// NewStore creates a new in-memory draft store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		data: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores a copy of data under key.
func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used - len(s.data[key]) + len(data)
	if s.quota > 0 && used > s.quota {
		return ErrQuotaExceeded
	}
	s.data[key] = slices.Clone(data)
	s.used = used
	return nil
}

// Get returns a copy of the value so callers can't mutate store state.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return slices.Clone(data), nil
}

// Delete removes the value.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used -= len(s.data[key])
	delete(s.data, key)
	return nil
}

// List returns all keys in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

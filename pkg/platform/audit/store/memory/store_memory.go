// Package memory keeps audit events in process. It backs the audit log when
// no database is configured and in tests.
package memory

import (
	"context"
	"sync"

	audit "regsync/pkg/platform/audit"
)

// DefaultCapacity bounds how many events the store retains.
const DefaultCapacity = 10_000

type InMemoryStore struct {
	mu       sync.RWMutex
	events   []audit.Event
	capacity int
}

type Option func(*InMemoryStore)

// WithCapacity caps retained events; the oldest are dropped first.
func WithCapacity(n int) Option {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if over := len(s.events) + 1 - s.capacity; over > 0 {
		s.events = append(s.events[:0], s.events[over:]...)
	}
	s.events = append(s.events, event)
	return nil
}

// ListByUser returns a user's events, most recent first.
func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].UserID == userID {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// Len reports how many events are retained.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}


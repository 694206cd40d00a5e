package sources

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"regsync/internal/registration/models"
)

// Source is a read-only upstream that returns the raw registrations of one
// user. Implementations return the undecoded body; decoding and field mapping
// belong to Normalize.
type Source interface {
	Kind() models.SourceKind
	Fetch(ctx context.Context, userID string) ([]byte, error)
}

// Registry holds at most one Source per kind.
type Registry struct {
	mu      sync.RWMutex
	sources map[models.SourceKind]Source
}

// NewRegistry creates a registry pre-populated with the given sources.
func NewRegistry(srcs ...Source) (*Registry, error) {
	r := &Registry{sources: make(map[models.SourceKind]Source, len(srcs))}
	for _, s := range srcs {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a source. Kinds outside models.SourceOrder are rejected so
// that dedup order stays well defined.
func (r *Registry) Register(s Source) error {
	kind := s.Kind()
	if !kind.IsValid() {
		return fmt.Errorf("%w: %s", ErrUnknownSource, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[kind]; exists {
		return fmt.Errorf("%w: %s", ErrSourceRegistered, kind)
	}
	r.sources[kind] = s
	return nil
}

// Get retrieves the source for a kind.
func (r *Registry) Get(kind models.SourceKind) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[kind]
	return s, ok
}

// Ordered returns the registered sources in canonical fetch order.
func (r *Registry) Ordered() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind().Rank() < result[j].Kind().Rank()
	})
	return result
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

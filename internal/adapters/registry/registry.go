// Package registry resolves library adapters by application name.
package registry

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"refsync/internal/application"
	"refsync/internal/ports"
)

var _ ports.AdapterResolver = (*Registry)(nil)

// Registry holds the configured adapters
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]ports.LibraryAdapter
}

// New creates a registry with the given adapters
func New(adapters ...ports.LibraryAdapter) *Registry {
	r := &Registry{adapters: make(map[string]ports.LibraryAdapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter of a's application
func (r *Registry) Register(a ports.LibraryAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Application()] = a
}

// Adapter returns the adapter registered under name
func (r *Registry) Adapter(name string) (ports.LibraryAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, application.ErrUnknownApplication)
	}
	return a, nil
}

// Adapters returns every adapter ordered by application name
func (r *Registry) Adapters() []ports.LibraryAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ports.LibraryAdapter, 0, len(r.adapters))
	for _, name := range slices.Sorted(maps.Keys(r.adapters)) {
		out = append(out, r.adapters[name])
	}
	return out
}

// Package fetchers maps record classes to the document fetchers able to
// enumerate them.
package fetchers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// Factory creates a fetcher for class as of until.
// It may return nil and no error when there is nothing to fetch.
type Factory func(ctx context.Context, class string, until time.Time) (driven.DocumentFetcher, error)

// Ensure Registry implements the interface.
var _ driven.FetcherRegistry = (*Registry)(nil)

// Registry maps identifiers to fetcher factories.
//
// Lookup tries the exact class, then its ancestors most specific first,
// then the fallback factory.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	fallback  Factory
	hierarchy driven.TypeHierarchy
}

// NewRegistry creates a new fetcher registry.
// The hierarchy may be nil, in which case only exact matches apply.
func NewRegistry(hierarchy driven.TypeHierarchy) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		hierarchy: hierarchy,
	}
}

// Register adds a factory under an identifier, usually a class name.
func (r *Registry) Register(id string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[id] = factory
}

// SetFallback sets the factory used when no identifier matches.
func (r *Registry) SetFallback(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = factory
}

// Has returns true if a factory is registered under id.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[id]
	return ok
}

// Names returns all registered identifiers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fetcher returns a fetcher for class as of until.
// Returns nil and no error if no factory applies.
func (r *Registry) Fetcher(ctx context.Context, class string, until time.Time) (driven.DocumentFetcher, error) {
	factory := r.lookup(class)
	if factory == nil {
		return nil, nil
	}
	fetcher, err := factory(ctx, class, until)
	if err != nil {
		return nil, fmt.Errorf("create fetcher for %s: %w", class, err)
	}
	return fetcher, nil
}

func (r *Registry) lookup(class string) Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := []string{class}
	if r.hierarchy != nil {
		candidates = r.hierarchy.Ancestry(class)
	}
	for _, candidate := range candidates {
		if f, ok := r.factories[candidate]; ok {
			return f
		}
	}
	return r.fallback
}

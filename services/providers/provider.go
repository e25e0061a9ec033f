package providers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"lyrics-aggregator-go/services/matcher"
)

// ErrProviderNotFound is returned when a source name is not registered.
var ErrProviderNotFound = errors.New("provider not found")

// Provider defines the interface that all lyrics providers must implement
type Provider interface {
	// Name returns the provider's identifier (e.g., "apple", "spotify")
	Name() string

	// Search returns the provider's catalog hits for a query, normalized into
	// candidates. Candidate.Ref carries whatever Fetch needs.
	Search(ctx context.Context, q matcher.Query) ([]matcher.Candidate, error)

	// Fetch downloads the raw lyrics payload for a chosen candidate.
	Fetch(ctx context.Context, c matcher.Candidate) (*Payload, error)
}

// Registry holds the providers available to a lookup
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry pre-populated with the given providers
func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		r.Register(p)
	}
	return r
}

// Register adds a provider, replacing any provider with the same name
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// List returns all registered provider names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a provider is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}

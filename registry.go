package chainz

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
)

// Registry groups chains under a shared namespace. Chain names inside a
// registry must be unique; the full chain name is "namespace/name", so
// failure labels and signals from registered chains always carry the
// namespace.
//
// A Registry is safe for concurrent use.
type Registry struct {
	namespace Name
	chains    map[Name]*Chain
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry. The namespace follows the same
// rules as chain names.
func NewRegistry(namespace Name) (*Registry, error) {
	if err := validateName(namespace); err != nil {
		return nil, err
	}
	return &Registry{
		namespace: namespace,
		chains:    make(map[Name]*Chain),
	}, nil
}

// New builds a chain named "namespace/name" and registers it. A name already
// present in the registry is rejected with ErrDuplicateChain; the existing
// chain is untouched.
func (r *Registry) New(name Name, elements ...any) (*Chain, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.chains[name]; exists {
		capitan.Warn(context.Background(), SignalRegistryCollision,
			FieldNamespace.Field(string(r.namespace)),
			FieldChain.Field(string(name)),
			FieldTimestamp.Field(float64(time.Now().Unix())),
		)
		return nil, fmt.Errorf("%w: %q in namespace %q", ErrDuplicateChain, name, r.namespace)
	}
	chain, err := newChain(r.namespace+"/"+name, elements)
	if err != nil {
		return nil, err
	}
	r.chains[name] = chain
	return chain, nil
}

// Get returns the chain registered under name, or nil when absent.
func (r *Registry) Get(name Name) *Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chains[name]
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]Name, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered chains.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chains)
}

// Namespace returns the registry's namespace.
func (r *Registry) Namespace() Name {
	return r.namespace
}

// Close shuts down every registered chain's observability components.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, chain := range r.chains {
		_ = chain.Close() //nolint:errcheck
	}
	return nil
}

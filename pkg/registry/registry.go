// Package registry maps workflow-description item types to work item
// factories, so loaders can materialize items without hardcoding
// implementations.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fabianoP/spine-engine/pkg/domain"
)

// Factory builds a work item from its description: display name, graph
// ID, and the type-specific config block.
type Factory func(name, id string, config map[string]any) (domain.WorkItem, error)

// Registry manages the available item types.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds an item type. A type registered twice is overwritten.
func (r *Registry) Register(kind string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = fn
}

// Build looks up the factory for kind and materializes one item.
func (r *Registry) Build(kind, name, id string, config map[string]any) (domain.WorkItem, error) {
	r.mu.RLock()
	fn, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown item type: %s", kind)
	}
	return fn(name, id, config)
}

// Kinds returns the registered type names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

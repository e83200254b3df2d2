// Package dsl provides a fluent API for assembling workflow definitions
// programmatically, as an alternative to the YAML description file.
package dsl

import (
	"github.com/fabianoP/spine-engine/pkg/domain"
	"github.com/fabianoP/spine-engine/pkg/ports"
)

// Builder manages the workflow construction.
type Builder struct {
	items      []domain.WorkItem
	successors map[string][]string
	permits    map[string]bool
}

// New creates a new workflow builder.
func New() *Builder {
	return &Builder{
		successors: make(map[string][]string),
		permits:    make(map[string]bool),
	}
}

// Add registers a work item with its permit on and returns a fluent
// handle for wiring it.
func (b *Builder) Add(item domain.WorkItem) *ItemBuilder {
	b.items = append(b.items, item)
	b.permits[item.Name()] = true
	return &ItemBuilder{name: item.Name(), builder: b}
}

// Definition compiles the accumulated workflow into the engine
// construction triple. Shape validation (unknown names, cycles,
// duplicate IDs) happens at engine construction.
func (b *Builder) Definition() *ports.Definition {
	return &ports.Definition{
		Items:      b.items,
		Successors: b.successors,
		Permits:    b.permits,
	}
}

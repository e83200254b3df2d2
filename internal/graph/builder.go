// Package graph builds the two direction-specific injector maps from the
// successor relation of a workflow, and validates the workflow shape at
// construction time.
package graph

import (
	"fmt"
	"regexp"

	"github.com/gammazero/toposort"

	"github.com/fabianoP/spine-engine/pkg/domain"
)

// idPattern is the set of characters safe to use as graph node keys.
// Anything else (spaces, arrows, quotes) collides with graph notation in
// the presentation layer and is rejected up front.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Build is the immutable result of workflow construction. All maps are
// keyed by item ID.
type Build struct {
	// IDsByName maps an item's display name to its ID.
	IDsByName map[string]string

	// BackwardInjectors lists, per item, the IDs whose output feeds it in
	// the backward pass: its direct successors.
	BackwardInjectors map[string][]string

	// ForwardInjectors is the exact inverse relation: per item, its direct
	// predecessors, the inputs of the forward pass.
	ForwardInjectors map[string][]string

	// Permits carries the per-item execution permit.
	Permits map[string]bool

	// Order is a topological order of the forward graph (predecessors
	// first). The backward pass uses it reversed.
	Order []string
}

// New validates the workflow triple and produces the injector maps.
// Successors and permits are keyed by item name; the result is keyed by
// item ID. All errors wrap domain.ErrInvalidWorkflow.
func New(items []domain.WorkItem, successors map[string][]string, permits map[string]bool) (*Build, error) {
	b := &Build{
		IDsByName:         make(map[string]string, len(items)),
		BackwardInjectors: make(map[string][]string, len(items)),
		ForwardInjectors:  make(map[string][]string, len(items)),
		Permits:           make(map[string]bool, len(items)),
	}

	ids := make(map[string]string, len(items)) // id -> name, for duplicate detection
	for _, item := range items {
		name, id := item.Name(), item.ID()
		if !idPattern.MatchString(id) {
			return nil, fmt.Errorf("%w: item %q has ID %q with reserved characters", domain.ErrInvalidWorkflow, name, id)
		}
		if _, dup := b.IDsByName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate item name %q", domain.ErrInvalidWorkflow, name)
		}
		if other, dup := ids[id]; dup {
			return nil, fmt.Errorf("%w: items %q and %q share ID %q", domain.ErrInvalidWorkflow, other, name, id)
		}
		b.IDsByName[name] = id
		ids[id] = name
	}

	for _, item := range items {
		permit, ok := permits[item.Name()]
		if !ok {
			return nil, fmt.Errorf("%w: no execution permit for item %q", domain.ErrInvalidWorkflow, item.Name())
		}
		b.Permits[item.ID()] = permit
	}

	for name, succs := range successors {
		id, ok := b.IDsByName[name]
		if !ok {
			return nil, fmt.Errorf("%w: successor map references unknown item %q", domain.ErrInvalidWorkflow, name)
		}
		mapped := make([]string, 0, len(succs))
		for _, succ := range succs {
			succID, ok := b.IDsByName[succ]
			if !ok {
				return nil, fmt.Errorf("%w: item %q lists unknown successor %q", domain.ErrInvalidWorkflow, name, succ)
			}
			mapped = append(mapped, succID)
		}
		b.BackwardInjectors[id] = mapped
	}

	b.ForwardInjectors = Invert(b.BackwardInjectors)

	order, err := b.sort(items)
	if err != nil {
		return nil, err
	}
	b.Order = order

	return b, nil
}

// Invert flips a relation expressed as a map of lists: every edge
// key -> value becomes an entry value -> key in the result. Keys with no
// inbound edges are absent from the output, so Invert(Invert(m)) == m
// over the same edge set.
func Invert(relation map[string][]string) map[string][]string {
	inverted := make(map[string][]string, len(relation))
	for key, values := range relation {
		for _, value := range values {
			inverted[value] = append(inverted[value], key)
		}
	}
	return inverted
}

// sort produces a predecessor-first order of item IDs and rejects cyclic
// successor relations. Isolated items come first, in input order; the
// order among independent connected nodes is topologically valid but
// otherwise unspecified.
func (b *Build) sort(items []domain.WorkItem) ([]string, error) {
	edges := make([]toposort.Edge, 0)
	for _, item := range items {
		id := item.ID()
		for _, succ := range b.BackwardInjectors[id] {
			edges = append(edges, toposort.Edge{id, succ})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("%w: cycle in successor map: %v", domain.ErrInvalidWorkflow, err)
	}

	inSorted := make(map[string]bool, len(sorted))
	order := make([]string, 0, len(items))
	for _, node := range sorted {
		id := node.(string)
		inSorted[id] = true
		order = append(order, id)
	}

	// Items with no edges at all never reach the sorter; schedule them
	// first, in input order, so the result covers every item.
	isolated := make([]string, 0)
	for _, item := range items {
		if !inSorted[item.ID()] {
			isolated = append(isolated, item.ID())
		}
	}
	return append(isolated, order...), nil
}

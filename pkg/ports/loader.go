package ports

import (
	"context"

	"github.com/fabianoP/spine-engine/pkg/domain"
)

// Definition is the construction triple consumed by the engine: the work
// items, the successor relation (by item name) and the execution permits
// (by item name, total over all items).
type Definition struct {
	Items      []domain.WorkItem
	Successors map[string][]string
	Permits    map[string]bool
}

// WorkflowLoader produces an engine construction triple from an external
// workflow description (a YAML file, a remote registry, ...). The engine
// itself never parses descriptions; it only consumes the triple.
type WorkflowLoader interface {
	Load(ctx context.Context) (*Definition, error)
}

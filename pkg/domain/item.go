package domain

// Direction selects which of the two scheduler passes a work item is
// participating in.
type Direction int

const (
	// Backward is the resource-collection pass. An item's inputs are the
	// outputs of its direct successors in the workflow graph.
	Backward Direction = iota
	// Forward is the real execution pass. An item's inputs are the outputs
	// of its direct predecessors.
	Forward
)

func (d Direction) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	}
	return "unknown"
}

// Resource is an opaque payload produced by one work item and routed to
// its graph neighbors. The engine never inspects its content.
type Resource any

// WorkItem is the capability the engine requires from every unit of the
// workflow graph. Implementations live outside the engine (see
// internal/adapters/process for a reference one).
type WorkItem interface {
	// Name returns the globally unique display name of the item.
	Name() string

	// ID returns the unique short identifier used as the graph node key.
	// It must consist of letters, digits, underscores and hyphens only.
	ID() string

	// Execute runs the item's own logic for one pass, with the aggregated
	// outputs of its injectors as input. A false return marks the node
	// failed.
	Execute(inputs []Resource, dir Direction) bool

	// OutputResources returns the resources this item offers to its graph
	// neighbors in the given direction. It is consulted even when the
	// item's execution permit is off (pass-through).
	OutputResources(dir Direction) []Resource

	// StopExecution asks a running item to abort. It is a cooperative
	// signal, safe to invoke from another goroutine; the item decides how
	// and whether to honor it.
	StopExecution()
}

package runtime

import "github.com/fabianoP/spine-engine/pkg/domain"

type nodeStatus int

const (
	statusPending nodeStatus = iota
	statusRunning
	statusSucceeded
	statusFailed
	statusSkipped
)

func (s nodeStatus) terminal() bool {
	return s == statusSucceeded || s == statusFailed || s == statusSkipped
}

func (s nodeStatus) domain() domain.NodeStatus {
	switch s {
	case statusRunning:
		return domain.NodeRunning
	case statusSucceeded:
		return domain.NodeSucceeded
	case statusFailed:
		return domain.NodeFailed
	case statusSkipped:
		return domain.NodeSkipped
	}
	return domain.NodePending
}

// node binds one work item to one pass: its injector list for that
// direction, its execution permit, and its write-once output. Nodes are
// created fresh per pass and touched only by the scheduler goroutine.
type node struct {
	item      domain.WorkItem
	injectors []string
	permit    bool
	status    nodeStatus
	output    []domain.Resource
}

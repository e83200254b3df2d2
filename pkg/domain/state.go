package domain

import "fmt"

// EngineState is the process-wide run state of one engine instance. It is
// written only by the execution coordinator (and Stop) and read by every
// node before it executes.
type EngineState int

const (
	// StateSleeping is the initial state, before Run is called.
	StateSleeping EngineState = iota
	// StateRunning covers both scheduler passes.
	StateRunning
	// StateUserStopped is terminal: Stop was called during the run.
	StateUserStopped
	// StateFailed is terminal: at least one node failed and the run was
	// not stopped by the user first.
	StateFailed
	// StateCompleted is terminal: both passes finished with the state
	// still Running.
	StateCompleted
)

func (s EngineState) String() string {
	switch s {
	case StateSleeping:
		return "sleeping"
	case StateRunning:
		return "running"
	case StateUserStopped:
		return "user_stopped"
	case StateFailed:
		return "failed"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// Terminal reports whether the state is one of the three end states.
func (s EngineState) Terminal() bool {
	return s == StateUserStopped || s == StateFailed || s == StateCompleted
}

// MarshalText implements encoding.TextMarshaler so states serialize as
// their names in JSON payloads (HTTP adapter, CLI output).
func (s EngineState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for clients decoding
// a Report back from JSON.
func (s *EngineState) UnmarshalText(text []byte) error {
	for _, candidate := range []EngineState{StateSleeping, StateRunning, StateUserStopped, StateFailed, StateCompleted} {
		if string(text) == candidate.String() {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown engine state %q", string(text))
}

// NodeStatus is the per-node outcome within one pass.
type NodeStatus string

const (
	NodePending   NodeStatus = "pending"
	NodeRunning   NodeStatus = "running"
	NodeSucceeded NodeStatus = "succeeded"
	NodeFailed    NodeStatus = "failed"
	NodeSkipped   NodeStatus = "skipped"
)

// Report is a snapshot of an engine run: the global state plus the
// per-node statuses of both passes, keyed by item ID.
type Report struct {
	State    EngineState           `json:"state"`
	Backward map[string]NodeStatus `json:"backward"`
	Forward  map[string]NodeStatus `json:"forward"`
}

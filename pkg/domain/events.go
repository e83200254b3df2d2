package domain

import (
	"context"
	"time"
)

// EventType defines the category of a node lifecycle event.
type EventType string

const (
	EventNodeStarted   EventType = "node_started"
	EventNodeSucceeded EventType = "node_succeeded"
	// EventNodeFailed covers both an Execute returning false and the
	// fail-fast abort of a node after the run left the Running state.
	EventNodeFailed EventType = "node_failed"
	// EventNodeSkipped means a transitive predecessor failed or was
	// skipped; the item's logic was never invoked.
	EventNodeSkipped EventType = "node_skipped"
)

// NodeEvent describes one node reaching a lifecycle point in one pass.
type NodeEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ItemID    string    `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Direction Direction `json:"direction"`
}

// LifecycleHooks defines callbacks for engine observability. The engine
// invokes them synchronously, on the goroutine driving the run, in event
// order. Nil members are skipped.
type LifecycleHooks struct {
	OnNodeStarted   func(context.Context, *NodeEvent)
	OnNodeSucceeded func(context.Context, *NodeEvent)
	OnNodeFailed    func(context.Context, *NodeEvent)
	OnNodeSkipped   func(context.Context, *NodeEvent)
}

// Package runtime contains the execution coordinator and the dependency
// scheduler: the machinery that runs a workflow's backward and forward
// passes and reconciles node outcomes into the global run state.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fabianoP/spine-engine/internal/graph"
	"github.com/fabianoP/spine-engine/internal/logging"
	"github.com/fabianoP/spine-engine/pkg/domain"
)

// Engine owns the run-state machine and drives the two scheduler passes
// in sequence: backward (resource collection) then forward (execution).
// An Engine is single-shot; construct a new one to run again.
type Engine struct {
	items map[string]domain.WorkItem // by item ID
	build *graph.Build

	state stateCell

	// runningMu guards the currently-running item pointer, read by Stop
	// and written by the run goroutine. Stop may race with the natural
	// completion of that item; the stale StopExecution call this allows
	// is accepted behavior.
	runningMu sync.Mutex
	running   domain.WorkItem

	reportMu sync.Mutex
	statuses map[domain.Direction]map[string]domain.NodeStatus

	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLogger sets a structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks, invoked in event
// order on the run goroutine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// NewEngine validates the workflow triple and builds both injector maps.
// All validation errors wrap domain.ErrInvalidWorkflow.
func NewEngine(items []domain.WorkItem, successors map[string][]string, permits map[string]bool, opts ...EngineOption) (*Engine, error) {
	build, err := graph.New(items, successors, permits)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		items:  make(map[string]domain.WorkItem, len(items)),
		build:  build,
		logger: logging.NewNop(),
		statuses: map[domain.Direction]map[string]domain.NodeStatus{
			domain.Backward: make(map[string]domain.NodeStatus, len(items)),
			domain.Forward:  make(map[string]domain.NodeStatus, len(items)),
		},
	}
	for _, item := range items {
		e.items[item.ID()] = item
		e.statuses[domain.Backward][item.ID()] = domain.NodePending
		e.statuses[domain.Forward][item.ID()] = domain.NodePending
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// State returns the current engine state. Safe from any goroutine.
func (e *Engine) State() domain.EngineState {
	return e.state.get()
}

// Run drives both passes to completion, blocking the caller. All item
// invocations happen on the calling goroutine. It returns nil when the
// run completed, domain.ErrStopped or domain.ErrFailed for the other
// terminal states, and domain.ErrNotSleeping if the engine already ran.
// Cancelling ctx is equivalent to calling Stop.
func (e *Engine) Run(ctx context.Context) error {
	if !e.state.transition(domain.StateSleeping, domain.StateRunning) {
		return domain.ErrNotSleeping
	}
	e.logger.Info("run started", "items", len(e.items))

	if ctx == nil {
		ctx = context.Background()
	}
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			e.Stop()
		case <-watchDone:
		}
	}()

	// The forward pass observes any failure or stop from the backward
	// pass through the shared state cell; no outcome is carried between
	// the passes explicitly.
	for _, dir := range []domain.Direction{domain.Backward, domain.Forward} {
		if err := e.newScheduler(dir).run(ctx); err != nil {
			e.state.fail()
			e.logger.Error("scheduler error", "direction", dir.String(), "err", err)
		}
	}

	if e.state.transition(domain.StateRunning, domain.StateCompleted) {
		e.logger.Info("run completed")
		return nil
	}
	switch st := e.state.get(); st {
	case domain.StateUserStopped:
		e.logger.Info("run stopped")
		return domain.ErrStopped
	default:
		e.logger.Info("run failed")
		return domain.ErrFailed
	}
}

// Stop moves the engine to UserStopped and signals the currently running
// item, if any, to abort. It is idempotent, safe from any goroutine, and
// a no-op once the run reached a terminal state. The signal is
// cooperative; the item may have already finished by the time it lands.
// Calling Stop before Run permanently cancels the engine: the later Run
// returns domain.ErrNotSleeping.
func (e *Engine) Stop() {
	e.state.stop()

	e.runningMu.Lock()
	item := e.running
	e.runningMu.Unlock()
	if item != nil {
		e.logger.Info("stopping item", "item", item.ID())
		item.StopExecution()
	}
}

// Report snapshots the global state and the per-node statuses of both
// passes.
func (e *Engine) Report() domain.Report {
	e.reportMu.Lock()
	defer e.reportMu.Unlock()

	report := domain.Report{
		State:    e.state.get(),
		Backward: make(map[string]domain.NodeStatus, len(e.items)),
		Forward:  make(map[string]domain.NodeStatus, len(e.items)),
	}
	for id, st := range e.statuses[domain.Backward] {
		report.Backward[id] = st
	}
	for id, st := range e.statuses[domain.Forward] {
		report.Forward[id] = st
	}
	return report
}

// Graph returns copies of the forward and backward injector maps, keyed
// by item ID, for introspection surfaces.
func (e *Engine) Graph() (forward, backward map[string][]string) {
	return copyRelation(e.build.ForwardInjectors), copyRelation(e.build.BackwardInjectors)
}

// Items returns the item display names keyed by ID.
func (e *Engine) Items() map[string]string {
	names := make(map[string]string, len(e.items))
	for id, item := range e.items {
		names[id] = item.Name()
	}
	return names
}

// newScheduler assembles a fresh node set for one pass. Backward nodes
// take their injectors from the successor relation, forward nodes from
// its inverse; the iteration order is the forward topological order,
// reversed for the backward pass.
func (e *Engine) newScheduler(dir domain.Direction) *scheduler {
	injectors := e.build.ForwardInjectors
	order := e.build.Order
	if dir == domain.Backward {
		injectors = e.build.BackwardInjectors
		order = reversed(e.build.Order)
	}

	nodes := make(map[string]*node, len(e.items))
	for id, item := range e.items {
		nodes[id] = &node{
			item:      item,
			injectors: injectors[id],
			permit:    e.build.Permits[id],
		}
	}
	return &scheduler{
		direction: dir,
		nodes:     nodes,
		order:     order,
		state:     &e.state,
		emit:      e.consume,
		logger:    e.logger,
	}
}

// consume is the single sink for scheduler events. It updates the
// running-item pointer and the run state, records the node status, and
// forwards the event to user hooks.
func (e *Engine) consume(ctx context.Context, typ domain.EventType, n *node, dir domain.Direction) {
	switch typ {
	case domain.EventNodeStarted:
		e.runningMu.Lock()
		e.running = n.item
		e.runningMu.Unlock()
	case domain.EventNodeFailed:
		e.state.fail()
	}

	e.reportMu.Lock()
	e.statuses[dir][n.item.ID()] = n.status.domain()
	e.reportMu.Unlock()

	event := &domain.NodeEvent{
		Timestamp: time.Now(),
		Type:      typ,
		ItemID:    n.item.ID(),
		ItemName:  n.item.Name(),
		Direction: dir,
	}
	switch typ {
	case domain.EventNodeStarted:
		invoke(ctx, e.hooks.OnNodeStarted, event)
	case domain.EventNodeSucceeded:
		invoke(ctx, e.hooks.OnNodeSucceeded, event)
	case domain.EventNodeFailed:
		invoke(ctx, e.hooks.OnNodeFailed, event)
	case domain.EventNodeSkipped:
		invoke(ctx, e.hooks.OnNodeSkipped, event)
	}
}

func invoke(ctx context.Context, hook func(context.Context, *domain.NodeEvent), event *domain.NodeEvent) {
	if hook != nil {
		hook(ctx, event)
	}
}

func copyRelation(relation map[string][]string) map[string][]string {
	out := make(map[string][]string, len(relation))
	for key, values := range relation {
		out[key] = append([]string(nil), values...)
	}
	return out
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fabianoP/spine-engine/pkg/domain"
)

// scheduler executes one pass over a fixed node set, respecting
// injector-before-node ordering. The reference behavior is sequential on
// the calling goroutine; ordering guarantees are limited to "a node never
// starts before all its injectors are terminal".
type scheduler struct {
	direction domain.Direction
	nodes     map[string]*node
	order     []string
	state     *stateCell
	emit      func(ctx context.Context, typ domain.EventType, n *node, dir domain.Direction)
	logger    *slog.Logger
}

// run drives the pass to completion. Every node reaches a terminal
// status; the only possible error is a stall, which an acyclic build
// rules out and therefore indicates a bug.
func (s *scheduler) run(ctx context.Context) error {
	remaining := len(s.nodes)
	for remaining > 0 {
		progressed := false
		for _, id := range s.order {
			n := s.nodes[id]
			if n.status != statusPending || !s.ready(n) {
				continue
			}
			if s.blocked(n) {
				n.status = statusSkipped
				s.logger.Debug("node skipped", "item", n.item.ID(), "direction", s.direction.String())
				s.emit(ctx, domain.EventNodeSkipped, n, s.direction)
			} else {
				s.compute(ctx, n)
			}
			remaining--
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("%s pass stalled with %d nodes unresolved", s.direction, remaining)
		}
	}
	return nil
}

// ready reports whether every injector of n has reached a terminal
// status.
func (s *scheduler) ready(n *node) bool {
	for _, id := range n.injectors {
		if !s.nodes[id].status.terminal() {
			return false
		}
	}
	return true
}

// blocked reports whether any injector of n failed or was skipped, in
// which case n is skipped without invoking its item (skip cascade).
func (s *scheduler) blocked(n *node) bool {
	for _, id := range n.injectors {
		if st := s.nodes[id].status; st == statusFailed || st == statusSkipped {
			return true
		}
	}
	return false
}

// compute runs one node. The engine-state check comes first: once the
// run has left Running, every not-yet-started node fails without its
// item being consulted. This is the global fail-fast abort, and it is
// deliberate; it spans both passes through the shared state cell.
func (s *scheduler) compute(ctx context.Context, n *node) {
	n.status = statusRunning
	s.emit(ctx, domain.EventNodeStarted, n, s.direction)

	if st := s.state.get(); st == domain.StateUserStopped || st == domain.StateFailed {
		n.status = statusFailed
		s.logger.Debug("node aborted", "item", n.item.ID(), "direction", s.direction.String(), "state", st.String())
		s.emit(ctx, domain.EventNodeFailed, n, s.direction)
		return
	}

	if n.permit && !n.item.Execute(s.gather(n), s.direction) {
		n.status = statusFailed
		s.logger.Debug("node failed", "item", n.item.ID(), "direction", s.direction.String())
		s.emit(ctx, domain.EventNodeFailed, n, s.direction)
		return
	}

	// Output is collected whether or not the item executed: items with
	// the permit off still feed their resources to their neighbors.
	n.output = n.item.OutputResources(s.direction)
	n.status = statusSucceeded
	s.emit(ctx, domain.EventNodeSucceeded, n, s.direction)
}

// gather concatenates the injector outputs in injector-list order. Order
// within one injector's output sequence is preserved.
func (s *scheduler) gather(n *node) []domain.Resource {
	var inputs []domain.Resource
	for _, id := range n.injectors {
		inputs = append(inputs, s.nodes[id].output...)
	}
	return inputs
}

package runtime

import (
	"sync"

	"github.com/fabianoP/spine-engine/pkg/domain"
)

// stateCell is the synchronized process-wide state shared between the
// run goroutine and concurrent Stop callers.
type stateCell struct {
	mu sync.Mutex
	s  domain.EngineState
}

func (c *stateCell) get() domain.EngineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

// transition moves from -> to atomically and reports whether it did.
func (c *stateCell) transition(from, to domain.EngineState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s != from {
		return false
	}
	c.s = to
	return true
}

// fail marks the run failed. A stop wins over a failure that is merely
// its consequence, so UserStopped is left untouched.
func (c *stateCell) fail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s != domain.StateUserStopped {
		c.s = domain.StateFailed
	}
}

// stop marks the run user-stopped unless it already reached a terminal
// state, keeping repeated Stop calls idempotent.
func (c *stateCell) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.s.Terminal() {
		c.s = domain.StateUserStopped
	}
}

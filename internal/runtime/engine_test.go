package runtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabianoP/spine-engine/internal/runtime"
	"github.com/fabianoP/spine-engine/internal/testutils"
	"github.com/fabianoP/spine-engine/pkg/domain"
)

// eventLog records lifecycle events in order.
type eventLog struct {
	mu     sync.Mutex
	events []domain.NodeEvent
}

func (l *eventLog) hooks() domain.LifecycleHooks {
	record := func(ctx context.Context, e *domain.NodeEvent) {
		l.mu.Lock()
		l.events = append(l.events, *e)
		l.mu.Unlock()
	}
	return domain.LifecycleHooks{
		OnNodeStarted:   record,
		OnNodeSucceeded: record,
		OnNodeFailed:    record,
		OnNodeSkipped:   record,
	}
}

// startOrder returns the IDs of started nodes in the given direction.
func (l *eventLog) startOrder(dir domain.Direction) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var order []string
	for _, e := range l.events {
		if e.Type == domain.EventNodeStarted && e.Direction == dir {
			order = append(order, e.ItemID)
		}
	}
	return order
}

func (l *eventLog) typesFor(id string, dir domain.Direction) []domain.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	var types []domain.EventType
	for _, e := range l.events {
		if e.ItemID == id && e.Direction == dir {
			types = append(types, e.Type)
		}
	}
	return types
}

func permitAll(list ...*testutils.Item) map[string]bool {
	permits := make(map[string]bool, len(list))
	for _, item := range list {
		permits[item.Name()] = true
	}
	return permits
}

func asItems(list ...*testutils.Item) []domain.WorkItem {
	out := make([]domain.WorkItem, len(list))
	for i, item := range list {
		out[i] = item
	}
	return out
}

func TestEngine_PassOrdering(t *testing.T) {
	a := testutils.NewItem("A", "a")
	b := testutils.NewItem("B", "b")
	log := &eventLog{}

	eng, err := runtime.NewEngine(
		asItems(a, b),
		map[string][]string{"A": {"B"}},
		permitAll(a, b),
		runtime.WithLifecycleHooks(log.hooks()),
	)
	require.NoError(t, err)

	require.NoError(t, eng.Run(context.Background()))
	assert.Equal(t, domain.StateCompleted, eng.State())

	assert.Equal(t, []string{"b", "a"}, log.startOrder(domain.Backward), "backward pass visits successors first")
	assert.Equal(t, []string{"a", "b"}, log.startOrder(domain.Forward), "forward pass visits predecessors first")
}

func TestEngine_PermitOffIsPassThrough(t *testing.T) {
	a := testutils.NewItem("A", "a").WithOutputs(domain.Forward, "a-res")
	b := testutils.NewItem("B", "b")

	eng, err := runtime.NewEngine(
		asItems(a, b),
		map[string][]string{"A": {"B"}},
		map[string]bool{"A": false, "B": true},
	)
	require.NoError(t, err)

	require.NoError(t, eng.Run(context.Background()))
	assert.Equal(t, domain.StateCompleted, eng.State())

	assert.Empty(t, a.Executions(), "permit off: Execute must never run")
	assert.Equal(t, []domain.Resource{"a-res"}, b.InputsIn(domain.Forward), "permit off: resources still flow")
}

func TestEngine_FailurePropagates(t *testing.T) {
	a := testutils.NewItem("A", "a").FailIn(domain.Forward)
	b := testutils.NewItem("B", "b")
	log := &eventLog{}

	eng, err := runtime.NewEngine(
		asItems(a, b),
		map[string][]string{"A": {"B"}},
		permitAll(a, b),
		runtime.WithLifecycleHooks(log.hooks()),
	)
	require.NoError(t, err)

	err = eng.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrFailed)
	assert.Equal(t, domain.StateFailed, eng.State())

	assert.False(t, b.ExecutedIn(domain.Forward), "dependent of a failed node must not execute")
	assert.Equal(t,
		[]domain.EventType{domain.EventNodeStarted, domain.EventNodeFailed},
		log.typesFor("a", domain.Forward))
	assert.Equal(t,
		[]domain.EventType{domain.EventNodeSkipped},
		log.typesFor("b", domain.Forward), "skip is reported distinctly from failure")

	report := eng.Report()
	assert.Equal(t, domain.NodeFailed, report.Forward["a"])
	assert.Equal(t, domain.NodeSkipped, report.Forward["b"])
}

func TestEngine_BackwardFailureAbortsForwardPass(t *testing.T) {
	a := testutils.NewItem("A", "a").FailIn(domain.Backward)
	b := testutils.NewItem("B", "b")
	lone := testutils.NewItem("Lone", "lone")
	log := &eventLog{}

	eng, err := runtime.NewEngine(
		asItems(a, b, lone),
		map[string][]string{"A": {"B"}},
		permitAll(a, b, lone),
		runtime.WithLifecycleHooks(log.hooks()),
	)
	require.NoError(t, err)

	assert.ErrorIs(t, eng.Run(context.Background()), domain.ErrFailed)
	assert.Equal(t, domain.StateFailed, eng.State())

	// Once the backward pass fails, the forward pass runs no item logic
	// at all, including on branches unrelated to the failing node.
	assert.False(t, a.ExecutedIn(domain.Forward))
	assert.False(t, b.ExecutedIn(domain.Forward))
	assert.False(t, lone.ExecutedIn(domain.Forward))

	// The aborted node fails at its state check rather than cascading
	// from a predecessor, so it is reported failed, not skipped.
	assert.Equal(t,
		[]domain.EventType{domain.EventNodeStarted, domain.EventNodeFailed},
		log.typesFor("lone", domain.Forward))

	report := eng.Report()
	assert.Equal(t, domain.NodeFailed, report.Backward["a"])
	assert.Equal(t, domain.NodeFailed, report.Forward["lone"])
	assert.Equal(t, domain.NodeSkipped, report.Forward["b"], "dependent of the aborted node still skips")
}

func TestEngine_SkipCascadesTransitively(t *testing.T) {
	a := testutils.NewItem("A", "a").FailIn(domain.Forward)
	b := testutils.NewItem("B", "b")
	c := testutils.NewItem("C", "c")

	eng, err := runtime.NewEngine(
		asItems(a, b, c),
		map[string][]string{"A": {"B"}, "B": {"C"}},
		permitAll(a, b, c),
	)
	require.NoError(t, err)

	assert.ErrorIs(t, eng.Run(context.Background()), domain.ErrFailed)
	assert.False(t, b.ExecutedIn(domain.Forward))
	assert.False(t, c.ExecutedIn(domain.Forward))
}

func TestEngine_DiamondAggregatesInputs(t *testing.T) {
	a := testutils.NewItem("A", "a")
	b := testutils.NewItem("B", "b").WithOutputs(domain.Forward, "b1", "b2")
	c := testutils.NewItem("C", "c").WithOutputs(domain.Forward, "c1")
	d := testutils.NewItem("D", "d")

	eng, err := runtime.NewEngine(
		asItems(a, b, c, d),
		map[string][]string{"A": {"B", "C"}, "B": {"D"}, "C": {"D"}},
		permitAll(a, b, c, d),
	)
	require.NoError(t, err)
	require.NoError(t, eng.Run(context.Background()))

	inputs := d.InputsIn(domain.Forward)
	assert.ElementsMatch(t, []domain.Resource{"b1", "b2", "c1"}, inputs)

	// Order within one injector's output sequence is preserved.
	var fromB []domain.Resource
	for _, r := range inputs {
		if r == "b1" || r == "b2" {
			fromB = append(fromB, r)
		}
	}
	assert.Equal(t, []domain.Resource{"b1", "b2"}, fromB)
}

func TestEngine_BackwardCollectsSuccessorResources(t *testing.T) {
	a := testutils.NewItem("A", "a")
	b := testutils.NewItem("B", "b").WithOutputs(domain.Backward, "b-spec")

	eng, err := runtime.NewEngine(
		asItems(a, b),
		map[string][]string{"A": {"B"}},
		permitAll(a, b),
	)
	require.NoError(t, err)
	require.NoError(t, eng.Run(context.Background()))

	assert.Equal(t, []domain.Resource{"b-spec"}, a.InputsIn(domain.Backward))
}

func TestEngine_StopWhileRunning(t *testing.T) {
	a := testutils.NewItem("A", "a")
	b := testutils.NewItem("B", "b")
	release, started := a.BlockIn(domain.Forward)
	defer release()

	eng, err := runtime.NewEngine(
		asItems(a, b),
		map[string][]string{"A": {"B"}},
		permitAll(a, b),
	)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- eng.Run(context.Background()) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("item A never started executing")
	}

	eng.Stop()
	assert.Equal(t, domain.StateUserStopped, eng.State(), "stop is observable before Run returns")
	assert.Equal(t, 1, a.StopCalls(), "running item receives the stop signal")

	release()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrStopped)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after release")
	}

	assert.False(t, b.ExecutedIn(domain.Forward), "items after a stop must not execute")
	assert.Equal(t, domain.StateUserStopped, eng.State(), "a consequent failure does not override the stop")
}

func TestEngine_StopIsIdempotent(t *testing.T) {
	a := testutils.NewItem("A", "a")

	eng, err := runtime.NewEngine(asItems(a), map[string][]string{}, permitAll(a))
	require.NoError(t, err)
	require.NoError(t, eng.Run(context.Background()))

	require.Equal(t, domain.StateCompleted, eng.State())
	eng.Stop()
	eng.Stop()
	assert.Equal(t, domain.StateCompleted, eng.State(), "stop after a terminal state is a no-op")
	assert.Equal(t, domain.StateCompleted, eng.State())
}

func TestEngine_StopBeforeRunCancelsPermanently(t *testing.T) {
	a := testutils.NewItem("A", "a")

	eng, err := runtime.NewEngine(asItems(a), map[string][]string{}, permitAll(a))
	require.NoError(t, err)

	eng.Stop()
	assert.Equal(t, domain.StateUserStopped, eng.State())
	assert.ErrorIs(t, eng.Run(context.Background()), domain.ErrNotSleeping)
	assert.False(t, a.ExecutedIn(domain.Forward))
}

func TestEngine_RunIsSingleShot(t *testing.T) {
	a := testutils.NewItem("A", "a")

	eng, err := runtime.NewEngine(asItems(a), map[string][]string{}, permitAll(a))
	require.NoError(t, err)

	require.NoError(t, eng.Run(context.Background()))
	assert.ErrorIs(t, eng.Run(context.Background()), domain.ErrNotSleeping)
	assert.Equal(t, domain.StateCompleted, eng.State())
}

func TestEngine_ContextCancelStops(t *testing.T) {
	a := testutils.NewItem("A", "a")
	b := testutils.NewItem("B", "b")
	release, started := a.BlockIn(domain.Forward)
	defer release()

	eng, err := runtime.NewEngine(
		asItems(a, b),
		map[string][]string{"A": {"B"}},
		permitAll(a, b),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	<-started
	cancel()

	// Stop lands asynchronously from the context watcher.
	require.Eventually(t, func() bool {
		return eng.State() == domain.StateUserStopped
	}, 5*time.Second, 10*time.Millisecond)

	release()
	assert.ErrorIs(t, <-done, domain.ErrStopped)
}

func TestEngine_GraphIntrospection(t *testing.T) {
	a := testutils.NewItem("A", "a")
	b := testutils.NewItem("B", "b")

	eng, err := runtime.NewEngine(
		asItems(a, b),
		map[string][]string{"A": {"B"}},
		permitAll(a, b),
	)
	require.NoError(t, err)

	forward, backward := eng.Graph()
	assert.Equal(t, []string{"a"}, forward["b"])
	assert.Equal(t, []string{"b"}, backward["a"])
	assert.Equal(t, map[string]string{"a": "A", "b": "B"}, eng.Items())

	// Mutating the copies must not leak into the engine.
	forward["b"][0] = "mutated"
	reread, _ := eng.Graph()
	assert.Equal(t, []string{"a"}, reread["b"])
}

func TestEngine_ConstructionErrorSurfaces(t *testing.T) {
	a := testutils.NewItem("A", "a")

	_, err := runtime.NewEngine(asItems(a), map[string][]string{"A": {"Nope"}}, permitAll(a))
	assert.ErrorIs(t, err, domain.ErrInvalidWorkflow)
}

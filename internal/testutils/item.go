// Package testutils provides scriptable work items shared by the engine
// test suites.
package testutils

import (
	"sync"

	"github.com/fabianoP/spine-engine/pkg/domain"
)

// Execution records one Execute invocation observed by an Item.
type Execution struct {
	Direction domain.Direction
	Inputs    []domain.Resource
}

// Item is a scriptable domain.WorkItem. The zero configuration succeeds
// in both directions and produces no resources.
type Item struct {
	name string
	id   string

	mu         sync.Mutex
	executions []Execution
	stopCalls  int

	failIn  map[domain.Direction]bool
	outputs map[domain.Direction][]domain.Resource

	// block, when non-nil, makes Execute wait in the given direction until
	// Release is called. started is closed when the wait begins.
	block   chan struct{}
	blockIn domain.Direction
	started chan struct{}
}

var _ domain.WorkItem = (*Item)(nil)

// NewItem creates a succeeding item with the given name and ID.
func NewItem(name, id string) *Item {
	return &Item{
		name:    name,
		id:      id,
		failIn:  make(map[domain.Direction]bool),
		outputs: make(map[domain.Direction][]domain.Resource),
	}
}

// WithOutputs sets the resources the item yields in a direction.
func (i *Item) WithOutputs(dir domain.Direction, resources ...domain.Resource) *Item {
	i.outputs[dir] = resources
	return i
}

// FailIn makes Execute return false in the given direction.
func (i *Item) FailIn(dir domain.Direction) *Item {
	i.failIn[dir] = true
	return i
}

// BlockIn makes Execute block in the given direction until the returned
// release function is called. The returned channel is closed as soon as
// the blocked Execute begins.
func (i *Item) BlockIn(dir domain.Direction) (release func(), started <-chan struct{}) {
	i.block = make(chan struct{})
	i.blockIn = dir
	i.started = make(chan struct{})
	var once sync.Once
	return func() { once.Do(func() { close(i.block) }) }, i.started
}

func (i *Item) Name() string { return i.name }
func (i *Item) ID() string   { return i.id }

func (i *Item) Execute(inputs []domain.Resource, dir domain.Direction) bool {
	i.mu.Lock()
	i.executions = append(i.executions, Execution{Direction: dir, Inputs: inputs})
	block := i.block != nil && i.blockIn == dir
	i.mu.Unlock()

	if block {
		close(i.started)
		<-i.block
	}
	return !i.failIn[dir]
}

func (i *Item) OutputResources(dir domain.Direction) []domain.Resource {
	return i.outputs[dir]
}

func (i *Item) StopExecution() {
	i.mu.Lock()
	i.stopCalls++
	i.mu.Unlock()
}

// Executions returns a copy of the recorded Execute invocations.
func (i *Item) Executions() []Execution {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Execution(nil), i.executions...)
}

// ExecutedIn reports whether Execute ran in the given direction.
func (i *Item) ExecutedIn(dir domain.Direction) bool {
	for _, e := range i.Executions() {
		if e.Direction == dir {
			return true
		}
	}
	return false
}

// InputsIn returns the inputs seen by Execute in the given direction, or
// nil if it never ran there.
func (i *Item) InputsIn(dir domain.Direction) []domain.Resource {
	for _, e := range i.Executions() {
		if e.Direction == dir {
			return e.Inputs
		}
	}
	return nil
}

// StopCalls returns how many times StopExecution was invoked.
func (i *Item) StopCalls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stopCalls
}

// Package process provides the reference WorkItem implementation: an item
// that runs a local command during the forward pass. The engine core does
// not depend on it; the CLI wires it through the item registry.
package process

import (
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/fabianoP/spine-engine/internal/logging"
	"github.com/fabianoP/spine-engine/pkg/domain"
)

// Kind is the registry type name for process items.
const Kind = "process"

// Config describes the command an Item runs.
type Config struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
	Dir     string   `mapstructure:"dir"`
}

// Output is the resource a process item yields in the forward pass.
type Output struct {
	Item   string `json:"item"`
	Stdout string `json:"stdout"`
}

// Item executes a local command in the forward pass; the backward pass is
// a no-op since a process has nothing to collect from its successors.
type Item struct {
	name   string
	id     string
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stopped bool
	stdout  bytes.Buffer
}

var _ domain.WorkItem = (*Item)(nil)

// Option configures an Item.
type Option func(*Item)

// WithLogger sets a structured logger for command lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Item) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates a process item.
func New(name, id string, cfg Config, opts ...Option) *Item {
	i := &Item{
		name:   name,
		id:     id,
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// FromConfig is the registry factory: it decodes the generic description
// config into a Config and validates it.
func FromConfig(name, id string, raw map[string]any) (domain.WorkItem, error) {
	var cfg Config
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return nil, fmt.Errorf("process item %q: %w", name, err)
	}
	if cfg.Command == "" {
		return nil, fmt.Errorf("process item %q: command is required", name)
	}
	return New(name, id, cfg), nil
}

func (i *Item) Name() string { return i.name }
func (i *Item) ID() string   { return i.id }

func (i *Item) Execute(inputs []domain.Resource, dir domain.Direction) bool {
	if dir == domain.Backward {
		return true
	}

	i.mu.Lock()
	if i.stopped {
		i.mu.Unlock()
		return false
	}
	cmd := exec.Command(i.cfg.Command, i.cfg.Args...)
	cmd.Dir = i.cfg.Dir
	cmd.Stdout = &i.stdout
	i.cmd = cmd
	i.mu.Unlock()

	i.logger.Debug("running command", "item", i.id, "command", i.cfg.Command)
	if err := cmd.Run(); err != nil {
		i.logger.Debug("command failed", "item", i.id, "err", err)
		return false
	}
	return true
}

func (i *Item) OutputResources(dir domain.Direction) []domain.Resource {
	if dir == domain.Backward {
		return nil
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return []domain.Resource{Output{Item: i.id, Stdout: i.stdout.String()}}
}

// StopExecution kills the running process, if any. Safe from any
// goroutine; an item stopped before it started refuses to start.
func (i *Item) StopExecution() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopped = true
	if i.cmd != nil && i.cmd.Process != nil {
		// Kill is best effort: the process may have exited already.
		_ = i.cmd.Process.Kill()
	}
}

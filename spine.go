package spine

import (
	"context"
	"log/slog"

	"github.com/fabianoP/spine-engine/internal/runtime"
	"github.com/fabianoP/spine-engine/pkg/domain"
	"github.com/fabianoP/spine-engine/pkg/ports"
)

// Version is the library version, surfaced by the CLI.
const Version = "0.3.0"

// Engine is the high-level entry point of the library. It wraps the
// internal runtime coordinator and exposes the public run surface.
type Engine struct {
	runtime *runtime.Engine
}

// Option defines a functional option for configuring the Engine.
type Option func(*config)

type config struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// WithLogger sets a structured logger for the engine. By default the
// engine is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks, invoked synchronously
// in event order during Run.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// New builds an engine from the construction triple: work items, the
// successor relation keyed by item name, and a permit map that must be
// total over the items. Malformed workflows are rejected here, before any
// run, with errors wrapping domain.ErrInvalidWorkflow.
func New(items []domain.WorkItem, successors map[string][]string, permits map[string]bool, opts ...Option) (*Engine, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(cfg.hooks),
	}
	if cfg.logger != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLogger(cfg.logger))
	}

	rt, err := runtime.NewEngine(items, successors, permits, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	return &Engine{runtime: rt}, nil
}

// Load builds an engine from an external workflow description via the
// given loader.
func Load(ctx context.Context, loader ports.WorkflowLoader, opts ...Option) (*Engine, error) {
	def, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(def.Items, def.Successors, def.Permits, opts...)
}

// Run drives the backward pass then the forward pass to completion,
// blocking the caller; all item invocations happen on the calling
// goroutine. It returns nil when the run completed, domain.ErrStopped or
// domain.ErrFailed for the other terminal outcomes, and
// domain.ErrNotSleeping if the engine already ran. Cancelling ctx is
// equivalent to calling Stop.
func (e *Engine) Run(ctx context.Context) error {
	return e.runtime.Run(ctx)
}

// Stop requests cancellation of a run in progress. It is idempotent and
// safe to call from any goroutine; the currently running item, if any,
// receives a cooperative StopExecution signal. Calling Stop before Run
// permanently cancels the engine: the later Run returns
// domain.ErrNotSleeping.
func (e *Engine) Stop() {
	e.runtime.Stop()
}

// State returns the current engine state. Safe from any goroutine.
func (e *Engine) State() domain.EngineState {
	return e.runtime.State()
}

// Report snapshots the global state plus per-node statuses of both
// passes, keyed by item ID.
func (e *Engine) Report() domain.Report {
	return e.runtime.Report()
}

// Graph returns copies of the forward and backward injector maps, keyed
// by item ID, for introspection and visualization tools.
func (e *Engine) Graph() (forward, backward map[string][]string) {
	return e.runtime.Graph()
}

// Items returns the item display names keyed by ID.
func (e *Engine) Items() map[string]string {
	return e.runtime.Items()
}

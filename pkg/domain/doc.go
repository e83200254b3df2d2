// Package domain contains the shared vocabulary of the engine: the work
// item capability interface, execution directions, the run-state machine
// values and the lifecycle event types consumed by observability hooks.
//
// It has no dependencies on the runtime so that adapters (HTTP, CLI,
// loaders) can speak the same types without importing engine internals.
package domain

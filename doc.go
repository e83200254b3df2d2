/*
Package spine executes a workflow expressed as a directed acyclic graph of
work items connected by producer/consumer dependencies.

Each item can both consume data produced by its predecessors and, in a
reversed pass that runs first, collect data from its successors. The
engine therefore drives two pipelines over the same graph:

  - Backward: items collect resources from their successors.
  - Forward: real execution, in dependency order.

A run moves through a small state machine: a newly built engine is
sleeping; Run moves it to running and it ends user_stopped, failed or
completed. Engines are single-shot — build a new one to run again.

# Usage

Work items are supplied by the caller as implementations of
domain.WorkItem. Construction takes the items, the successor relation
(by item name) and a total map of execution permits:

	package main

	import (
		"context"
		"log"

		spine "github.com/fabianoP/spine-engine"
	)

	func main() {
		eng, err := spine.New(items,
			map[string][]string{"Fetch": {"Clean"}, "Clean": {"Train"}},
			map[string]bool{"Fetch": true, "Clean": true, "Train": true},
		)
		if err != nil {
			log.Fatal(err)
		}

		if err := eng.Run(context.Background()); err != nil {
			log.Fatalf("run ended: %v (state %s)", err, eng.State())
		}
	}

Stop may be called from any goroutine while Run blocks; it cooperatively
signals the currently running item and short-circuits everything that has
not started yet, in both passes.

Workflows can also be loaded from a YAML description via Load and a
WorkflowLoader (see internal/adapters/yamlfile for the reference format).
*/
package spine

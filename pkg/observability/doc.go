// Package observability turns engine lifecycle events into Prometheus
// metrics. It is optional: the engine itself never depends on it.
package observability

package observability

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fabianoP/spine-engine/pkg/domain"
)

// Metrics exposes node lifecycle counters and durations.
type Metrics struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec

	mu      sync.Mutex
	started map[string]time.Time // keyed by direction/item
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spine_node_events_total",
				Help: "Node lifecycle events, by item, pass direction and event type.",
			},
			[]string{"item", "direction", "event"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "spine_node_duration_seconds",
				Help: "Wall time between a node starting and reaching a terminal event.",
			},
			[]string{"item", "direction"},
		),
		started: make(map[string]time.Time),
	}

	for _, c := range []prometheus.Collector{m.events, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the collectors. They are safe to
// combine with other hooks by fan-out at the caller.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeStarted:   m.onStart,
		OnNodeSucceeded: m.onEnd,
		OnNodeFailed:    m.onEnd,
		OnNodeSkipped:   m.onEnd,
	}
}

// Events exposes the event counter vector, for tests and custom
// dashboards.
func (m *Metrics) Events() *prometheus.CounterVec {
	return m.events
}

func (m *Metrics) onStart(_ context.Context, e *domain.NodeEvent) {
	m.events.WithLabelValues(e.ItemID, e.Direction.String(), string(e.Type)).Inc()
	m.mu.Lock()
	m.started[key(e)] = e.Timestamp
	m.mu.Unlock()
}

func (m *Metrics) onEnd(_ context.Context, e *domain.NodeEvent) {
	m.events.WithLabelValues(e.ItemID, e.Direction.String(), string(e.Type)).Inc()

	m.mu.Lock()
	start, ok := m.started[key(e)]
	delete(m.started, key(e))
	m.mu.Unlock()

	// Skipped nodes never started; there is no duration to observe.
	if ok {
		m.duration.WithLabelValues(e.ItemID, e.Direction.String()).Observe(e.Timestamp.Sub(start).Seconds())
	}
}

func key(e *domain.NodeEvent) string {
	return e.Direction.String() + "/" + e.ItemID
}

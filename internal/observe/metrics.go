package observe

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/larder/internal/persistence"
)

// Metrics counts persistence events by kind and adapter.
type Metrics struct {
	events *prometheus.CounterVec
}

// NewMetrics creates the event counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "larder",
			Subsystem: "persistence",
			Name:      "events_total",
			Help:      "Completed file operations by event kind and source adapter",
		}, []string{"event", "adapter"}),
	}
	if err := reg.Register(m.events); err != nil {
		return nil, err
	}
	return m, nil
}

// Listener returns the listener that feeds the counters.
func (m *Metrics) Listener() persistence.Listener {
	return func(ev persistence.Event) {
		adapter := ""
		if a := ev.File.Adapter(); a != nil {
			adapter = a.Name()
		}
		m.events.WithLabelValues(ev.Kind.String(), adapter).Inc()
	}
}

// Count returns the counter for one event kind and adapter.
func (m *Metrics) Count(kind persistence.EventKind, adapter string) prometheus.Counter {
	return m.events.WithLabelValues(kind.String(), adapter)
}

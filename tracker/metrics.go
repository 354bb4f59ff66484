package tracker

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes tracker progress as Prometheus gauges.
type Metrics struct {
	registry *prometheus.Registry
	tasks    *prometheus.GaugeVec
	hours    *prometheus.GaugeVec
	ratio    prometheus.Gauge
}

// NewMetrics creates gauges on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tasks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "semblueprint",
			Name:      "tasks",
			Help:      "Number of catalogue tasks by state.",
		}, []string{"state", "phase"}),
		hours: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "semblueprint",
			Name:      "estimated_hours",
			Help:      "Estimated authoring hours by state.",
		}, []string{"state"}),
		ratio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "semblueprint",
			Name:      "progress_ratio",
			Help:      "Fraction of catalogue tasks completed.",
		}),
	}
	m.registry.MustRegister(m.tasks, m.hours, m.ratio)
	return m
}

// Registry returns the registry holding the gauges.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets every gauge from the tracker's current state.
func (m *Metrics) Observe(t *Tracker) {
	m.tasks.Reset()
	m.hours.Reset()

	for _, state := range []State{StatePending, StateCompleted, StateFailed} {
		m.hours.WithLabelValues(string(state)).Set(0)
		for _, phase := range Phases {
			m.tasks.WithLabelValues(string(state), string(phase)).Set(0)
		}
	}

	for _, task := range t.tasks {
		state := string(t.status[task.BlueprintID].State)
		m.tasks.WithLabelValues(state, string(task.Phase)).Inc()
		m.hours.WithLabelValues(state).Add(task.EstimatedHours)
	}

	m.ratio.Set(t.Progress().ProgressPercentage / 100)
}

// WriteMetrics writes the tracker's gauges to path in the node-exporter
// textfile format.
func (t *Tracker) WriteMetrics(path string) error {
	m := NewMetrics()
	m.Observe(t)
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	t.logger.Debug("Wrote progress metrics", "path", path)
	return nil
}

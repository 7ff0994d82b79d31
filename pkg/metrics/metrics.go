// Package metrics exposes Prometheus instrumentation for simulation runs.
// Metrics describe run progress, not simulation results: the trace and
// status sinks remain the authoritative output.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for a simulation run
type Registry struct {
	// Trial metrics
	TrialsTotal        *prometheus.CounterVec
	TrialDuration      *prometheus.HistogramVec
	InfectionsTotal    prometheus.Counter
	CascadeLinksTotal  prometheus.Counter
	TraceRecordsTotal  prometheus.Counter
	EpidemicsRemaining prometheus.Gauge

	// Run metrics
	GraphNodes    prometheus.Gauge
	GraphArcs     prometheus.Gauge
	ActiveWorkers prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{registry: reg}

	r.TrialsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "epicascade_trials_total",
			Help: "Completed trials by stop criterion",
		},
		[]string{"criterion"},
	)
	r.TrialDuration = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "epicascade_trial_duration_seconds",
			Help:    "Wall-clock duration of individual trials",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"criterion"},
	)
	r.InfectionsTotal = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "epicascade_infections_total",
			Help: "Nodes infected across all trials",
		},
	)
	r.CascadeLinksTotal = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "epicascade_cascade_links_total",
			Help: "Realized cascade links across all trials",
		},
	)
	r.TraceRecordsTotal = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "epicascade_trace_records_total",
			Help: "Trace records emitted across all trials",
		},
	)
	r.EpidemicsRemaining = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "epicascade_epidemics_remaining",
			Help: "Initial conditions not yet fully sampled",
		},
	)
	r.GraphNodes = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "epicascade_graph_nodes",
			Help: "Node count of the loaded contact graph",
		},
	)
	r.GraphArcs = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "epicascade_graph_arcs",
			Help: "Arc count of the loaded contact graph",
		},
	)
	r.ActiveWorkers = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "epicascade_active_workers",
			Help: "Workers currently running a trial",
		},
	)

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// ObserveGraph records the size of the loaded graph
func (r *Registry) ObserveGraph(nodes, arcs int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphArcs.Set(float64(arcs))
}

// RecordTrial records one completed trial
func (r *Registry) RecordTrial(criterion string, duration time.Duration, infected, links, records int) {
	r.TrialsTotal.WithLabelValues(criterion).Inc()
	r.TrialDuration.WithLabelValues(criterion).Observe(duration.Seconds())
	r.InfectionsTotal.Add(float64(infected))
	r.CascadeLinksTotal.Add(float64(links))
	r.TraceRecordsTotal.Add(float64(records))
}

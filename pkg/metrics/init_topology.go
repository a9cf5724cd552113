package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTopologyMetrics() {
	r.TopologiesGenerated = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icnsim_topologies_generated_total",
			Help: "Total number of topology generation runs",
		},
		[]string{"mode", "status"},
	)

	r.PlacementAttempts = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "icnsim_placement_attempts",
			Help:    "Random draws needed to place a node on a free coordinate",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		},
	)

	r.LinksCreated = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icnsim_links_created_total",
			Help: "Total number of links created by the topology generator",
		},
		[]string{"kind"},
	)

	r.ConnectivityChecks = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icnsim_connectivity_checks_total",
			Help: "Total number of connectivity checks by result",
		},
		[]string{"result"},
	)

	r.UnreachableEndpoints = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "icnsim_unreachable_endpoints",
			Help: "Endpoints left unreachable by the last connectivity check",
		},
	)

	r.GenerationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "icnsim_generation_duration_seconds",
			Help:    "Generation step duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation"},
	)
}

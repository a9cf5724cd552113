package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all workload generation metrics
type Registry struct {
	// Topology Metrics
	TopologiesGenerated  *prometheus.CounterVec
	PlacementAttempts    prometheus.Histogram
	LinksCreated         *prometheus.CounterVec
	ConnectivityChecks   *prometheus.CounterVec
	UnreachableEndpoints prometheus.Gauge

	// Traffic Metrics
	QueueGenerations      *prometheus.CounterVec
	QueueEntriesGenerated *prometheus.CounterVec
	SkippedClasses        *prometheus.CounterVec

	// Shared
	GenerationDuration *prometheus.HistogramVec

	// Persistence Metrics
	PersistedBytes *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initTopologyMetrics()
	r.initTrafficMetrics()
	r.initStorageMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

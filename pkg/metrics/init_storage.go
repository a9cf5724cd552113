package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStorageMetrics() {
	r.PersistedBytes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icnsim_persisted_bytes_total",
			Help: "Bytes written by the persistence adapter by format",
		},
		[]string{"format"},
	)
}

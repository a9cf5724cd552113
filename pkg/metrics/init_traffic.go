package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTrafficMetrics() {
	r.QueueGenerations = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icnsim_queue_generations_total",
			Help: "Total number of data queue generation runs",
		},
		[]string{"mode", "status"},
	)

	r.QueueEntriesGenerated = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icnsim_queue_entries_generated_total",
			Help: "Total number of data queue entries by traffic class",
		},
		[]string{"class"},
	)

	r.SkippedClasses = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "icnsim_skipped_classes_total",
			Help: "Traffic class and host combinations skipped for lack of receivers",
		},
		[]string{"class"},
	)
}

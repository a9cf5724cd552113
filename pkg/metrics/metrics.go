package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordTopology records a topology generation run with its duration
func (r *Registry) RecordTopology(mode, status string, duration time.Duration) {
	r.TopologiesGenerated.WithLabelValues(mode, status).Inc()
	r.GenerationDuration.WithLabelValues("topology").Observe(duration.Seconds())
}

// RecordPlacement records how many draws one node placement needed
func (r *Registry) RecordPlacement(attempts int) {
	r.PlacementAttempts.Observe(float64(attempts))
}

// RecordLinks adds n created links of the given kind
func (r *Registry) RecordLinks(kind string, n int) {
	r.LinksCreated.WithLabelValues(kind).Add(float64(n))
}

// RecordConnectivity records a connectivity check result
func (r *Registry) RecordConnectivity(connected bool, unreachable int) {
	result := "connected"
	if !connected {
		result = "islands"
	}
	r.ConnectivityChecks.WithLabelValues(result).Inc()
	r.UnreachableEndpoints.Set(float64(unreachable))
}

// RecordQueue records a data queue generation run with its duration
func (r *Registry) RecordQueue(mode, status string, duration time.Duration) {
	r.QueueGenerations.WithLabelValues(mode, status).Inc()
	r.GenerationDuration.WithLabelValues("queue_" + mode).Observe(duration.Seconds())
}

// RecordQueueEntries adds n generated entries for a traffic class
func (r *Registry) RecordQueueEntries(classID, n int) {
	r.QueueEntriesGenerated.WithLabelValues(strconv.Itoa(classID)).Add(float64(n))
}

// RecordSkippedClass counts a class/host pair skipped for lack of receivers
func (r *Registry) RecordSkippedClass(classID int) {
	r.SkippedClasses.WithLabelValues(strconv.Itoa(classID)).Inc()
}

// RecordPersisted adds n bytes written in the given format
func (r *Registry) RecordPersisted(format string, n int64) {
	r.PersistedBytes.WithLabelValues(format).Add(float64(n))
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

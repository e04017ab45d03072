package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/Gurova-J/bookspace-backend/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeLabeled(w, "bookspace_stats_computed_total", "range", snap.StatsComputed)
	writeMetric(w, "bookspace_stats_cache_hits_total %d\n", snap.StatsCacheHits)
	writeMetric(w, "bookspace_stats_duration_seconds_count %d\n", snap.StatsDurationCount)

	writeLabeled(w, "bookspace_recommendations_total", "outcome", snap.Recommendations)
	writeLabeled(w, "bookspace_plan_updates_total", "result", snap.PlanUpdates)
	writeLabeled(w, "bookspace_library_changes_total", "kind", snap.LibraryChanges)

	writeLabeled(w, "bookspace_library_events_published_total", "status", snap.EventsPublished)
	writeLabeled(w, "bookspace_library_events_processed_total", "status", snap.EventsProcessed)
	writeMetric(w, "bookspace_library_event_batches_total %d\n", snap.EventBatches)
	writeMetric(w, "bookspace_library_event_batch_size_sum %d\n", snap.EventBatchTotalSize)
	writeMetric(w, "bookspace_library_event_queue_depth %d\n", snap.EventQueueDepth)
}

func writeLabeled(w http.ResponseWriter, name, label string, counts map[string]uint64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, counts[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

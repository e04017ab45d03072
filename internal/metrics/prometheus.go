package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bookspace"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	statsComputed      *prometheus.CounterVec
	statsDuration      prometheus.Histogram
	recommendations    *prometheus.CounterVec
	planUpdates        *prometheus.CounterVec
	libraryChanges     *prometheus.CounterVec
	eventsPublished    *prometheus.CounterVec
	eventsProcessed    *prometheus.CounterVec
	eventBatchSize     prometheus.Histogram
	eventBatchDuration prometheus.Histogram
	eventQueueDepth    prometheus.Gauge
}

// NewPrometheus creates a recorder and registers its collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	p := &PrometheusRecorder{
		statsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_computed_total",
			Help:      "Reading statistics requests by range and cache result.",
		}, []string{"range", "cache_hit"}),
		statsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stats_duration_seconds",
			Help:      "Time spent computing reading statistics.",
			Buckets:   prometheus.DefBuckets,
		}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		planUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_updates_total",
			Help:      "Plan target updates by result.",
		}, []string{"result"}),
		libraryChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "library_changes_total",
			Help:      "Library entry changes by kind.",
		}, []string{"kind"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "library_events_published_total",
			Help:      "Library events published to the stream.",
		}, []string{"status"}),
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "library_events_processed_total",
			Help:      "Library events processed by the worker.",
		}, []string{"status"}),
		eventBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "library_event_batch_size",
			Help:      "Number of events per worker batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		eventBatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "library_event_batch_duration_seconds",
			Help:      "Time spent processing a worker batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		eventQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "library_event_queue_depth",
			Help:      "Pending entries in the library event stream.",
		}),
	}

	reg.MustRegister(
		p.statsComputed,
		p.statsDuration,
		p.recommendations,
		p.planUpdates,
		p.libraryChanges,
		p.eventsPublished,
		p.eventsProcessed,
		p.eventBatchSize,
		p.eventBatchDuration,
		p.eventQueueDepth,
	)
	return p
}

func (p *PrometheusRecorder) IncStatsComputed(rangeKind string, cacheHit bool) {
	p.statsComputed.WithLabelValues(rangeKind, strconv.FormatBool(cacheHit)).Inc()
}

func (p *PrometheusRecorder) ObserveStatsDuration(duration time.Duration) {
	p.statsDuration.Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncRecommendation(outcome string) {
	p.recommendations.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncPlanUpdate(result string) {
	p.planUpdates.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncLibraryChange(kind string) {
	p.libraryChanges.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncLibraryEventPublished(status string) {
	p.eventsPublished.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) IncLibraryEventProcessed(status string) {
	p.eventsProcessed.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) ObserveEventBatchSize(size int) {
	p.eventBatchSize.Observe(float64(size))
}

func (p *PrometheusRecorder) ObserveEventBatchDuration(duration time.Duration) {
	p.eventBatchDuration.Observe(duration.Seconds())
}

func (p *PrometheusRecorder) SetEventQueueDepth(depth int64) {
	p.eventQueueDepth.Set(float64(depth))
}

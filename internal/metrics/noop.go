package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncStatsComputed(rangeKind string, cacheHit bool) {}
func (n *NoopRecorder) ObserveStatsDuration(duration time.Duration) {}
func (n *NoopRecorder) IncRecommendation(outcome string) {}
func (n *NoopRecorder) IncPlanUpdate(result string) {}
func (n *NoopRecorder) IncLibraryChange(kind string) {}
func (n *NoopRecorder) IncLibraryEventPublished(status string) {}
func (n *NoopRecorder) IncLibraryEventProcessed(status string) {}
func (n *NoopRecorder) ObserveEventBatchSize(size int) {}
func (n *NoopRecorder) ObserveEventBatchDuration(duration time.Duration) {}
func (n *NoopRecorder) SetEventQueueDepth(depth int64) {}

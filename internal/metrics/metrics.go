// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels shared by recorders.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusDropped = "dropped"

	RecommendationServed    = "served"
	RecommendationNoHistory = "no_history"

	PlanUpdateApplied   = "applied"
	PlanUpdateNoop      = "noop"
	PlanUpdateFailed    = "failed"
	PlanUpdateSwallowed = "swallowed"
)

// Recorder captures metric events for the application.
type Recorder interface {
	// Reading statistics
	IncStatsComputed(rangeKind string, cacheHit bool)
	ObserveStatsDuration(duration time.Duration)

	// Recommendations and plan targets
	IncRecommendation(outcome string)
	IncPlanUpdate(result string)

	// Library changes by event kind
	IncLibraryChange(kind string)

	// Library event pipeline
	IncLibraryEventPublished(status string) // status: "success" or "dropped"
	IncLibraryEventProcessed(status string) // status: "success", "failed", "skipped"
	ObserveEventBatchSize(size int)
	ObserveEventBatchDuration(duration time.Duration)
	SetEventQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

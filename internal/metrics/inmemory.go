package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	StatsComputed       map[string]uint64 // by range kind
	StatsCacheHits      uint64
	StatsDurationCount  uint64
	Recommendations     map[string]uint64 // by outcome
	PlanUpdates         map[string]uint64 // by result
	LibraryChanges      map[string]uint64 // by event kind
	EventsPublished     map[string]uint64 // by status
	EventsProcessed     map[string]uint64 // by status
	EventBatches        uint64
	EventQueueDepth     int64
	EventBatchTotalSize uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{snap: Snapshot{
		StatsComputed:   make(map[string]uint64),
		Recommendations: make(map[string]uint64),
		PlanUpdates:     make(map[string]uint64),
		LibraryChanges:  make(map[string]uint64),
		EventsPublished: make(map[string]uint64),
		EventsProcessed: make(map[string]uint64),
	}}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.snap
	out.StatsComputed = copyCounts(m.snap.StatsComputed)
	out.Recommendations = copyCounts(m.snap.Recommendations)
	out.PlanUpdates = copyCounts(m.snap.PlanUpdates)
	out.LibraryChanges = copyCounts(m.snap.LibraryChanges)
	out.EventsPublished = copyCounts(m.snap.EventsPublished)
	out.EventsProcessed = copyCounts(m.snap.EventsProcessed)
	return out
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *InMemoryRecorder) IncStatsComputed(rangeKind string, cacheHit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.StatsComputed[rangeKind]++
	if cacheHit {
		m.snap.StatsCacheHits++
	}
}

func (m *InMemoryRecorder) ObserveStatsDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.StatsDurationCount++
}

func (m *InMemoryRecorder) IncRecommendation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Recommendations[outcome]++
}

func (m *InMemoryRecorder) IncPlanUpdate(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.PlanUpdates[result]++
}

func (m *InMemoryRecorder) IncLibraryChange(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.LibraryChanges[kind]++
}

func (m *InMemoryRecorder) IncLibraryEventPublished(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.EventsPublished[status]++
}

func (m *InMemoryRecorder) IncLibraryEventProcessed(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.EventsProcessed[status]++
}

func (m *InMemoryRecorder) ObserveEventBatchSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.EventBatches++
	m.snap.EventBatchTotalSize += uint64(size)
}

func (m *InMemoryRecorder) ObserveEventBatchDuration(duration time.Duration) {}

func (m *InMemoryRecorder) SetEventQueueDepth(depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.EventQueueDepth = depth
}

package traitdex

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector receives pipeline counters and stage timings.
// Implementations must be safe for concurrent use: family-shard and
// trait-document writes report from multiple goroutines.
type MetricsCollector interface {
	RecordStage(stage string, duration time.Duration)
	RecordItemsLoaded(count int)
	RecordItemSkipped()
	RecordArtifact()
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

// RecordStage implements MetricsCollector.
func (NoopMetricsCollector) RecordStage(string, time.Duration) {}

// RecordItemsLoaded implements MetricsCollector.
func (NoopMetricsCollector) RecordItemsLoaded(int) {}

// RecordItemSkipped implements MetricsCollector.
func (NoopMetricsCollector) RecordItemSkipped() {}

// RecordArtifact implements MetricsCollector.
func (NoopMetricsCollector) RecordArtifact() {}

// PipelineStats is a snapshot of collected metrics.
type PipelineStats struct {
	ItemsLoaded      int64
	ItemsSkipped     int64
	ArtifactsWritten int64
	StageDurations   map[string]time.Duration
}

// BasicMetricsCollector collects counters in memory.
type BasicMetricsCollector struct {
	itemsLoaded      atomic.Int64
	itemsSkipped     atomic.Int64
	artifactsWritten atomic.Int64

	mu     sync.Mutex
	stages map[string]time.Duration
}

// RecordStage implements MetricsCollector.
func (m *BasicMetricsCollector) RecordStage(stage string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stages == nil {
		m.stages = make(map[string]time.Duration)
	}
	m.stages[stage] += duration
}

// RecordItemsLoaded implements MetricsCollector.
func (m *BasicMetricsCollector) RecordItemsLoaded(count int) {
	m.itemsLoaded.Add(int64(count))
}

// RecordItemSkipped implements MetricsCollector.
func (m *BasicMetricsCollector) RecordItemSkipped() {
	m.itemsSkipped.Add(1)
}

// RecordArtifact implements MetricsCollector.
func (m *BasicMetricsCollector) RecordArtifact() {
	m.artifactsWritten.Add(1)
}

// GetStats returns a snapshot of the collected metrics.
func (m *BasicMetricsCollector) GetStats() PipelineStats {
	m.mu.Lock()
	stages := make(map[string]time.Duration, len(m.stages))
	for k, v := range m.stages {
		stages[k] = v
	}
	m.mu.Unlock()

	return PipelineStats{
		ItemsLoaded:      m.itemsLoaded.Load(),
		ItemsSkipped:     m.itemsSkipped.Load(),
		ArtifactsWritten: m.artifactsWritten.Load(),
		StageDurations:   stages,
	}
}

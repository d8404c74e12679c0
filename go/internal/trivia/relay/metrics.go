package relay

import (
	"sync/atomic"
	"time"
)

// MetricsCollector records relay outcomes
type MetricsCollector interface {
	RecordPublished(eventType string, success bool, duration time.Duration)
	RecordDropped(eventType string)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordPublished(eventType string, success bool, duration time.Duration) {}
func (NoOpMetricsCollector) RecordDropped(eventType string)                                          {}

// Counters keeps running totals in memory.
type Counters struct {
	published atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

func (c *Counters) RecordPublished(eventType string, success bool, duration time.Duration) {
	if success {
		c.published.Add(1)
		return
	}
	c.failed.Add(1)
}

func (c *Counters) RecordDropped(eventType string) {
	c.dropped.Add(1)
}

// CounterSnapshot is a copy of the running totals.
type CounterSnapshot struct {
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
}

func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Published: c.published.Load(),
		Failed:    c.failed.Load(),
		Dropped:   c.dropped.Load(),
	}
}

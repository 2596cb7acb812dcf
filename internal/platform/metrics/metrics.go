package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"salesperf/internal/domain/evaluations"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu     sync.Mutex
	scored map[string]map[string]uint64
}

func New() *Collector {
	return &Collector{scored: map[string]map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordScored counts a scored evaluation by event type and rubric band.
func (c *Collector) RecordScored(eventType, rubrica string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byBand, ok := c.scored[eventType]
	if !ok {
		byBand = map[string]uint64{}
		c.scored[eventType] = byBand
	}
	byBand[rubrica]++
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	scored := make(map[string]map[string]uint64, len(c.scored))
	for eventType, byBand := range c.scored {
		copied := make(map[string]uint64, len(byBand))
		for band, count := range byBand {
			copied[band] = count
		}
		scored[eventType] = copied
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"scoredTotal":      scored,
	}
}

type countingPublisher struct {
	next      evaluations.Publisher
	collector *Collector
}

// CountScored wraps a publisher so every scored event is also counted.
func (c *Collector) CountScored(next evaluations.Publisher) evaluations.Publisher {
	return countingPublisher{next: next, collector: c}
}

func (p countingPublisher) Publish(ctx context.Context, event evaluations.ScoredEvent) error {
	p.collector.RecordScored(event.Type, event.Rubrica)
	if p.next == nil {
		return nil
	}
	return p.next.Publish(ctx, event)
}

package metrics

import (
	"context"
	"testing"
	"time"

	"salesperf/internal/domain/evaluations"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 2*time.Millisecond)

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) || snap["errorsTotal"] != uint64(1) || snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("unexpected snapshot %v", snap)
	}
	if snap["avgDurationMs"] != float64(14) {
		t.Fatalf("expected 14ms average, got %v", snap["avgDurationMs"])
	}
}

type sink struct {
	events []evaluations.ScoredEvent
}

func (s *sink) Publish(_ context.Context, event evaluations.ScoredEvent) error {
	s.events = append(s.events, event)
	return nil
}

func TestCountScoredDelegates(t *testing.T) {
	c := New()
	next := &sink{}
	pub := c.CountScored(next)

	_ = pub.Publish(context.Background(), evaluations.ScoredEvent{Type: evaluations.EventMonthlyScored, Rubrica: "Excelente"})
	_ = pub.Publish(context.Background(), evaluations.ScoredEvent{Type: evaluations.EventMonthlyScored, Rubrica: "Excelente"})
	_ = pub.Publish(context.Background(), evaluations.ScoredEvent{Type: evaluations.EventWeeklyScored, Rubrica: "Bueno"})

	if len(next.events) != 3 {
		t.Fatalf("expected delegation, got %d events", len(next.events))
	}
	scored := c.Snapshot()["scoredTotal"].(map[string]map[string]uint64)
	if scored[evaluations.EventMonthlyScored]["Excelente"] != 2 || scored[evaluations.EventWeeklyScored]["Bueno"] != 1 {
		t.Fatalf("unexpected counters %v", scored)
	}
}

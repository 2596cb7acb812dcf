package evaluations

import (
	"context"
	"log/slog"
	"time"

	"salesperf/internal/domain/scoring"
)

// Publisher receives a notification for every scored evaluation.
type Publisher interface {
	Publish(ctx context.Context, event ScoredEvent) error
}

type Service struct {
	store     StoreAPI
	engine    *scoring.Engine
	publisher Publisher
	now       func() time.Time
}

func NewService(store StoreAPI, engine *scoring.Engine, publisher Publisher) *Service {
	if engine == nil {
		engine = scoring.DefaultEngine()
	}
	return &Service{store: store, engine: engine, publisher: publisher, now: time.Now}
}

func (s *Service) Engine() *scoring.Engine {
	return s.engine
}

func (s *Service) publish(ctx context.Context, event ScoredEvent) {
	if s.publisher == nil {
		return
	}
	event.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("publish scored event failed", "err", err, "type", event.Type, "evaluation_id", event.EvaluationID)
	}
}

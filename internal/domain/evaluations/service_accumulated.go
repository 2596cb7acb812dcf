package evaluations

import (
	"context"

	"salesperf/internal/domain/scoring"
)

// Accumulated rolls weekly opportunity evaluations up per employee for the
// resolved period. An empty employeeID covers everyone.
func (s *Service) Accumulated(ctx context.Context, query PeriodQuery, employeeID string) (AccumulatedReport, error) {
	period, err := ResolvePeriod(query, s.now())
	if err != nil {
		return AccumulatedReport{}, err
	}
	scores, err := s.store.ListWeeklyScores(ctx, employeeID, period.From, period.To)
	if err != nil {
		return AccumulatedReport{}, err
	}
	return AccumulatedReport{
		From:      period.From,
		To:        period.To,
		Year:      period.Display.Year,
		Trimestre: period.Display.Trimestre,
		Summaries: scoring.SortedSummaries(scoring.Accumulate(scores, period.Display)),
	}, nil
}

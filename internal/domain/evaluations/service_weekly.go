package evaluations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salesperf/internal/domain/scoring"
)

// SubmitWeekly scores each opportunity evaluation and stores them under one
// weekly report.
func (s *Service) SubmitWeekly(ctx context.Context, draft WeeklyDraft) (WeeklyReport, error) {
	draft.EmployeeID = strings.TrimSpace(draft.EmployeeID)
	draft.EvaluatorID = strings.TrimSpace(draft.EvaluatorID)
	if draft.EmployeeID == "" || draft.EvaluatorID == "" {
		return WeeklyReport{}, fmt.Errorf("%w: employee and evaluator are required", ErrInvalidEvaluation)
	}
	if draft.WeekStart.IsZero() || draft.WeekEnd.IsZero() || draft.WeekEnd.Before(draft.WeekStart) {
		return WeeklyReport{}, fmt.Errorf("%w: week start must be on or before week end", ErrInvalidPeriod)
	}
	if len(draft.Evaluations) == 0 {
		return WeeklyReport{}, fmt.Errorf("%w: at least one opportunity evaluation is required", ErrInvalidEvaluation)
	}

	employee, err := s.store.EmployeeRef(ctx, draft.EmployeeID)
	if err != nil {
		return WeeklyReport{}, err
	}

	report := WeeklyReport{
		EmployeeID:  draft.EmployeeID,
		EvaluatorID: draft.EvaluatorID,
		Employee:    employee,
		WeekStart:   draft.WeekStart,
		WeekEnd:     draft.WeekEnd,
		Notes:       strings.TrimSpace(draft.Notes),
	}
	scores := make([]scoring.WeeklyScore, 0, len(draft.Evaluations))
	for i, item := range draft.Evaluations {
		ev, err := scoreOpportunity(item, report)
		if err != nil {
			return WeeklyReport{}, fmt.Errorf("%w: evaluation %d: %v", ErrInvalidEvaluation, i+1, err)
		}
		report.Evaluations = append(report.Evaluations, ev)
		scores = append(scores, ev.WeeklyScore(employee))
	}
	report.AverageScore = scoring.WeeklyAverage(scores)
	report.Rubrica = scoring.ClassifyWeekly(report.AverageScore)

	id, err := s.store.CreateWeeklyReport(ctx, report)
	if err != nil {
		return WeeklyReport{}, err
	}
	stored, err := s.store.GetWeeklyReport(ctx, id)
	if err != nil {
		return WeeklyReport{}, err
	}
	s.publish(ctx, ScoredEvent{
		Type:         EventWeeklyScored,
		EvaluationID: stored.ID,
		EmployeeID:   stored.EmployeeID,
		EvaluatorID:  stored.EvaluatorID,
		Score:        stored.AverageScore,
		Rubrica:      stored.Rubrica,
		Year:         stored.WeekStart.Year(),
		Quarter:      scoring.QuarterOf(stored.WeekStart.Month()),
	})
	return stored, nil
}

// scoreOpportunity keeps each evaluation inside its week and on the 0-20 scale.
func scoreOpportunity(item OpportunityDraft, report WeeklyReport) (OpportunityEvaluation, error) {
	raw := scoring.ScoreOpportunity(item.Items)
	possible, err := scoring.ResolvePossibleScore(raw, item.PossibleScore)
	if err != nil {
		return OpportunityEvaluation{}, fmt.Errorf("possible score must be between %g and %g", raw, scoring.MaxOpportunityScore())
	}
	date := item.EvaluationDate
	if date.IsZero() {
		date = report.WeekStart
	}
	if date.Before(report.WeekStart) || !date.Before(report.WeekEnd.AddDate(0, 0, 1)) {
		return OpportunityEvaluation{}, fmt.Errorf("evaluation date %s is outside the week", date.Format(time.DateOnly))
	}
	return OpportunityEvaluation{
		EmployeeID:     report.EmployeeID,
		EvaluatorID:    report.EvaluatorID,
		OpportunityID:  strings.TrimSpace(item.OpportunityID),
		EvaluationDate: date,
		Items:          item.Items,
		ScoreRaw:       raw,
		PossibleScore:  possible,
		Comments:       strings.TrimSpace(item.Comments),
	}, nil
}

func (s *Service) GetWeekly(ctx context.Context, reportID string) (WeeklyReport, error) {
	return s.store.GetWeeklyReport(ctx, reportID)
}

func (s *Service) ListWeekly(ctx context.Context, filter WeeklyFilter) ([]WeeklyReport, int, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, 0, fmt.Errorf("%w: from must be on or before to", ErrInvalidPeriod)
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.store.ListWeeklyReports(ctx, filter)
}

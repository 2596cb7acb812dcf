package evaluations

import (
	"context"
	"fmt"
	"strings"

	"salesperf/internal/domain/scoring"
)

// PreviewMonthly scores a submission without storing it.
func (s *Service) PreviewMonthly(submission scoring.MonthlySubmission) scoring.MonthlyScore {
	return s.engine.ScoreMonthly(submission.Input())
}

func (s *Service) SubmitMonthly(ctx context.Context, draft MonthlyDraft) (MonthlyEvaluation, error) {
	draft, err := normalizeMonthlyDraft(draft)
	if err != nil {
		return MonthlyEvaluation{}, err
	}
	employee, err := s.store.EmployeeRef(ctx, draft.EmployeeID)
	if err != nil {
		return MonthlyEvaluation{}, err
	}

	ev := MonthlyEvaluation{
		EmployeeID:     draft.EmployeeID,
		EvaluatorID:    draft.EvaluatorID,
		Employee:       employee,
		EvaluationDate: draft.EvaluationDate,
		Quarter:        draft.Quarter,
		Year:           draft.Year,
	}
	ev.applyScore(s.engine.ScoreMonthly(draft.Submission.Input()))

	id, err := s.store.CreateMonthly(ctx, ev)
	if err != nil {
		return MonthlyEvaluation{}, err
	}
	stored, err := s.store.GetMonthly(ctx, id)
	if err != nil {
		return MonthlyEvaluation{}, err
	}
	s.publish(ctx, monthlyEvent(stored))
	return stored, nil
}

// ReviseMonthly re-scores an existing evaluation. Identity fields never change.
func (s *Service) ReviseMonthly(ctx context.Context, evaluationID string, submission scoring.MonthlySubmission) (MonthlyEvaluation, error) {
	ev, err := s.store.GetMonthly(ctx, evaluationID)
	if err != nil {
		return MonthlyEvaluation{}, err
	}
	ev.applyScore(s.engine.ScoreMonthly(submission.Input()))
	if err := s.store.UpdateMonthlyScore(ctx, ev); err != nil {
		return MonthlyEvaluation{}, err
	}
	stored, err := s.store.GetMonthly(ctx, evaluationID)
	if err != nil {
		return MonthlyEvaluation{}, err
	}
	s.publish(ctx, monthlyEvent(stored))
	return stored, nil
}

func (s *Service) GetMonthly(ctx context.Context, evaluationID string) (MonthlyEvaluation, error) {
	return s.store.GetMonthly(ctx, evaluationID)
}

func (s *Service) ListMonthly(ctx context.Context, filter MonthlyFilter) ([]MonthlyEvaluation, int, error) {
	if filter.Quarter < 0 || filter.Quarter > 4 {
		return nil, 0, fmt.Errorf("%w: quarter must be between 1 and 4", ErrInvalidPeriod)
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.store.ListMonthly(ctx, filter)
}

// DeleteMonthly removes the given evaluations and reports how many existed.
func (s *Service) DeleteMonthly(ctx context.Context, evaluationIDs []string) (int64, error) {
	ids := make([]string, 0, len(evaluationIDs))
	seen := map[string]bool{}
	for _, id := range evaluationIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no evaluation ids given", ErrInvalidEvaluation)
	}
	return s.store.DeleteMonthly(ctx, ids)
}

func normalizeMonthlyDraft(draft MonthlyDraft) (MonthlyDraft, error) {
	draft.EmployeeID = strings.TrimSpace(draft.EmployeeID)
	draft.EvaluatorID = strings.TrimSpace(draft.EvaluatorID)
	if draft.EmployeeID == "" || draft.EvaluatorID == "" {
		return draft, fmt.Errorf("%w: employee and evaluator are required", ErrInvalidEvaluation)
	}
	if draft.EvaluationDate.IsZero() {
		return draft, fmt.Errorf("%w: evaluation date is required", ErrInvalidEvaluation)
	}
	if draft.Year == 0 {
		draft.Year = draft.EvaluationDate.Year()
	}
	if draft.Quarter == 0 {
		draft.Quarter = scoring.QuarterOf(draft.EvaluationDate.Month())
	}
	if draft.Quarter < 1 || draft.Quarter > 4 {
		return draft, fmt.Errorf("%w: quarter must be between 1 and 4", ErrInvalidPeriod)
	}
	if draft.Year < MinYear || draft.Year > MaxYear {
		return draft, fmt.Errorf("%w: year %d out of range", ErrInvalidPeriod, draft.Year)
	}
	return draft, nil
}

func monthlyEvent(ev MonthlyEvaluation) ScoredEvent {
	return ScoredEvent{
		Type:         EventMonthlyScored,
		EvaluationID: ev.ID,
		EmployeeID:   ev.EmployeeID,
		EvaluatorID:  ev.EvaluatorID,
		Score:        ev.TotalScore,
		Rubrica:      ev.Rubrica,
		Year:         ev.Year,
		Quarter:      ev.Quarter,
	}
}

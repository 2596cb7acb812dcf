package reports

import (
	"bytes"
	"context"
	"time"

	"salesperf/internal/domain/core"
	"salesperf/internal/domain/evaluations"
	"salesperf/internal/domain/scoring"
)

type EvaluationSource interface {
	GetMonthly(ctx context.Context, evaluationID string) (evaluations.MonthlyEvaluation, error)
	ListMonthly(ctx context.Context, filter evaluations.MonthlyFilter) ([]evaluations.MonthlyEvaluation, int, error)
	ListWeekly(ctx context.Context, filter evaluations.WeeklyFilter) ([]evaluations.WeeklyReport, int, error)
	Accumulated(ctx context.Context, query evaluations.PeriodQuery, employeeID string) (evaluations.AccumulatedReport, error)
}

type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
}

type Service struct {
	evaluations EvaluationSource
	employees   EmployeeDirectory
	runs        JobRunStore
	reportsDir  string
	now         func() time.Time
}

func NewService(source EvaluationSource, employees EmployeeDirectory, runs JobRunStore, reportsDir string) *Service {
	return &Service{
		evaluations: source,
		employees:   employees,
		runs:        runs,
		reportsDir:  reportsDir,
		now:         time.Now,
	}
}

func (s *Service) EmployeeDashboard(ctx context.Context, employeeID string, year int) (Dashboard, error) {
	if year == 0 {
		year = s.now().Year()
	}
	employee, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return Dashboard{}, err
	}

	monthly, _, err := s.evaluations.ListMonthly(ctx, evaluations.MonthlyFilter{EmployeeID: employeeID, Year: year, Limit: 500})
	if err != nil {
		return Dashboard{}, err
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	weekly, _, err := s.evaluations.ListWeekly(ctx, evaluations.WeeklyFilter{
		EmployeeID: employeeID,
		From:       from,
		To:         from.AddDate(1, 0, 0),
		Limit:      latestWeeklyLimit,
	})
	if err != nil {
		return Dashboard{}, err
	}
	rollup, err := s.evaluations.Accumulated(ctx, evaluations.PeriodQuery{Year: year}, employeeID)
	if err != nil {
		return Dashboard{}, err
	}

	var accumulated *scoring.AccumulatedSummary
	for i := range rollup.Summaries {
		if rollup.Summaries[i].Employee.ID == employeeID {
			accumulated = &rollup.Summaries[i]
			break
		}
	}
	return BuildDashboard(employee.Ref(), year, monthly, weekly, accumulated), nil
}

// ArchiveCurrentQuarter renders the current quarter roll-up to the reports
// directory. It is the body of the report_archive job.
func (s *Service) ArchiveCurrentQuarter(ctx context.Context) (map[string]any, error) {
	now := s.now()
	query := evaluations.PeriodQuery{Year: now.Year(), Quarter: scoring.QuarterOf(now.Month())}
	return s.Archive(ctx, query)
}

func (s *Service) Archive(ctx context.Context, query evaluations.PeriodQuery) (map[string]any, error) {
	report, err := s.evaluations.Accumulated(ctx, query, "")
	if err != nil {
		return nil, err
	}
	path, err := SaveAccumulatedPDF(s.reportsDir, report, s.now())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"path":      path,
		"year":      report.Year,
		"trimestre": report.Trimestre,
		"employees": len(report.Summaries),
	}, nil
}

func (s *Service) Accumulated(ctx context.Context, query evaluations.PeriodQuery, employeeID string) (evaluations.AccumulatedReport, error) {
	return s.evaluations.Accumulated(ctx, query, employeeID)
}

func (s *Service) AccumulatedPDF(ctx context.Context, query evaluations.PeriodQuery, employeeID string) ([]byte, evaluations.AccumulatedReport, error) {
	report, err := s.evaluations.Accumulated(ctx, query, employeeID)
	if err != nil {
		return nil, evaluations.AccumulatedReport{}, err
	}
	var buf bytes.Buffer
	if err := WriteAccumulatedPDF(&buf, report); err != nil {
		return nil, evaluations.AccumulatedReport{}, err
	}
	return buf.Bytes(), report, nil
}

func (s *Service) MonthlyPDF(ctx context.Context, evaluationID string) ([]byte, evaluations.MonthlyEvaluation, error) {
	ev, err := s.evaluations.GetMonthly(ctx, evaluationID)
	if err != nil {
		return nil, evaluations.MonthlyEvaluation{}, err
	}
	var buf bytes.Buffer
	if err := WriteMonthlyPDF(&buf, ev); err != nil {
		return nil, evaluations.MonthlyEvaluation{}, err
	}
	return buf.Bytes(), ev, nil
}

func (s *Service) JobRuns(ctx context.Context, jobType string, limit, offset int) ([]JobRun, int, error) {
	return s.runs.ListJobRuns(ctx, jobType, limit, offset)
}

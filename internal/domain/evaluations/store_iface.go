package evaluations

import (
	"context"
	"time"

	"salesperf/internal/domain/scoring"
)

type StoreAPI interface {
	EmployeeRef(ctx context.Context, employeeID string) (scoring.EmployeeRef, error)
	CreateMonthly(ctx context.Context, ev MonthlyEvaluation) (string, error)
	UpdateMonthlyScore(ctx context.Context, ev MonthlyEvaluation) error
	GetMonthly(ctx context.Context, evaluationID string) (MonthlyEvaluation, error)
	ListMonthly(ctx context.Context, filter MonthlyFilter) ([]MonthlyEvaluation, int, error)
	DeleteMonthly(ctx context.Context, evaluationIDs []string) (int64, error)
	CreateWeeklyReport(ctx context.Context, report WeeklyReport) (string, error)
	GetWeeklyReport(ctx context.Context, reportID string) (WeeklyReport, error)
	ListWeeklyReports(ctx context.Context, filter WeeklyFilter) ([]WeeklyReport, int, error)
	ListWeeklyScores(ctx context.Context, employeeID string, from, to time.Time) ([]scoring.WeeklyScore, error)
}

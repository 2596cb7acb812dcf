package reports

import (
	"testing"
	"time"

	"salesperf/internal/domain/evaluations"
	"salesperf/internal/domain/scoring"
)

func monthlyOn(id string, month time.Month, total float64) evaluations.MonthlyEvaluation {
	return evaluations.MonthlyEvaluation{
		ID:             id,
		EvaluationDate: time.Date(2025, month, 28, 0, 0, 0, 0, time.UTC),
		Quarter:        scoring.QuarterOf(month),
		Year:           2025,
		TotalScore:     total,
		Rubrica:        scoring.ClassifyMonthly(total),
	}
}

func TestBuildDashboard(t *testing.T) {
	employee := scoring.EmployeeRef{ID: "emp-1", FirstName: "Ana", LastName: "Ruiz"}
	monthly := []evaluations.MonthlyEvaluation{
		monthlyOn("m3", time.May, 80),
		monthlyOn("m1", time.January, 95),
		monthlyOn("m2", time.February, 85.556),
	}
	var weekly []evaluations.WeeklyReport
	for i := 0; i < 7; i++ {
		start := time.Date(2025, time.March, 3+7*i, 0, 0, 0, 0, time.UTC)
		weekly = append(weekly, evaluations.WeeklyReport{ID: start.Format("0102"), WeekStart: start, AverageScore: 15, Rubrica: scoring.RubricaBueno})
	}
	summary := &scoring.AccumulatedSummary{Employee: employee, Porcentaje: 66.6666}

	dash := BuildDashboard(employee, 2025, monthly, weekly, summary)

	if len(dash.Monthly) != 3 || dash.Monthly[0].EvaluationID != "m1" || dash.Monthly[2].EvaluationID != "m3" {
		t.Fatalf("expected chronological series, got %+v", dash.Monthly)
	}
	if dash.Monthly[1].TotalScore != 85.56 {
		t.Fatalf("expected rounded point, got %v", dash.Monthly[1].TotalScore)
	}
	if len(dash.Quarters) != 4 {
		t.Fatalf("expected four quarters, got %d", len(dash.Quarters))
	}
	q1 := dash.Quarters[0]
	if q1.Evaluations != 2 || q1.AverageScore != 90.28 || q1.Rubrica != scoring.RubricaAceptable {
		t.Fatalf("unexpected Q1 %+v", q1)
	}
	if dash.Quarters[2].Evaluations != 0 || dash.Quarters[2].Rubrica != "" {
		t.Fatalf("expected empty Q3, got %+v", dash.Quarters[2])
	}
	if dash.AnnualAverage != 86.85 || dash.AnnualRubrica != scoring.RubricaAceptable {
		t.Fatalf("unexpected annual %v %q", dash.AnnualAverage, dash.AnnualRubrica)
	}
	if len(dash.LatestWeekly) != latestWeeklyLimit || dash.LatestWeekly[0].WeekStart.Day() != 14 {
		t.Fatalf("expected newest weekly reports first, got %+v", dash.LatestWeekly)
	}
	if dash.Accumulated == nil || dash.Accumulated.Porcentaje != 66.67 {
		t.Fatalf("unexpected accumulated %+v", dash.Accumulated)
	}
	if summary.Porcentaje != 66.6666 {
		t.Fatal("input summary must not be modified")
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	dash := BuildDashboard(scoring.EmployeeRef{ID: "x"}, 2024, nil, nil, nil)
	if dash.AnnualAverage != 0 || dash.AnnualRubrica != "" || dash.Accumulated != nil {
		t.Fatalf("unexpected empty dashboard %+v", dash)
	}
	if dash.Monthly == nil || dash.LatestWeekly == nil {
		t.Fatal("expected empty slices for JSON output")
	}
}

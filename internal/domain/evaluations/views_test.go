package evaluations

import (
	"testing"

	"salesperf/internal/domain/scoring"
)

func TestMonthlyRoundedLeavesOriginal(t *testing.T) {
	ev := MonthlyEvaluation{
		Criteria:   []scoring.CriterionResult{{ID: scoring.CriterionSalesGoal, PonderedScore: 12.34567}},
		SubTotal:   71.4449,
		TotalScore: 76.4449,
	}
	rounded := ev.Rounded()
	if rounded.TotalScore != 76.44 || rounded.Criteria[0].PonderedScore != 12.35 {
		t.Fatalf("unexpected rounding %+v", rounded)
	}
	if ev.Criteria[0].PonderedScore != 12.34567 {
		t.Fatal("rounding must not mutate the stored criteria")
	}
}

func TestAccumulatedRounded(t *testing.T) {
	report := AccumulatedReport{Summaries: []scoring.AccumulatedSummary{{Porcentaje: 88.3333}}}
	if got := report.Rounded().Summaries[0].Porcentaje; got != 88.33 {
		t.Fatalf("expected 88.33, got %v", got)
	}
	if report.Summaries[0].Porcentaje != 88.3333 {
		t.Fatal("rounding must not mutate the source report")
	}
}

package scoring

import (
	"errors"
	"math"
	"testing"
)

func TestScoreOpportunityClampsItems(t *testing.T) {
	items := map[string]int{
		"needsDiscovery":     2,
		"stakeholderMapping": 1,
		"valueProposition":   5,
		"objectionHandling":  -1,
		"unknownItem":        2,
	}
	if got := ScoreOpportunity(items); got != 5 {
		t.Fatalf("expected 5, got %v", got)
	}
}

func TestScoreOpportunityPerfect(t *testing.T) {
	items := map[string]int{}
	for _, key := range OpportunitySubCriteria() {
		items[key] = 2
	}
	if got := ScoreOpportunity(items); got != DefaultPossibleScore {
		t.Fatalf("expected %d, got %v", DefaultPossibleScore, got)
	}
}

func TestWeeklyAverage(t *testing.T) {
	scores := []WeeklyScore{
		{ScoreRaw: 18, PossibleScore: 20},
		{ScoreRaw: 7, PossibleScore: 10},
		{ScoreRaw: 5, PossibleScore: 0},
	}
	// 18 + 14 + 0 over three evaluations
	avg := WeeklyAverage(scores)
	if Round2(avg) != 10.67 {
		t.Fatalf("expected 10.67, got %v", avg)
	}
	if WeeklyAverage(nil) != 0 {
		t.Fatal("expected zero average for no evaluations")
	}
}

func TestClassifyWeekly(t *testing.T) {
	if got := ClassifyWeekly(18); got != RubricaExcelente {
		t.Fatalf("expected %q, got %q", RubricaExcelente, got)
	}
	if got := ClassifyWeekly(15); got != RubricaBueno {
		t.Fatalf("expected %q, got %q", RubricaBueno, got)
	}
	if got := ClassifyWeekly(9.9); got != RubricaBajoRendimiento {
		t.Fatalf("expected %q, got %q", RubricaBajoRendimiento, got)
	}
}

func TestResolvePossibleScore(t *testing.T) {
	if got, err := ResolvePossibleScore(12, 0); err != nil || got != DefaultPossibleScore {
		t.Fatalf("expected default possible score, got %v (%v)", got, err)
	}
	if got, err := ResolvePossibleScore(12, 16); err != nil || got != 16 {
		t.Fatalf("expected 16, got %v (%v)", got, err)
	}
	for _, possible := range []float64{5, 19.5, 21, -1, math.NaN(), math.Inf(1)} {
		if _, err := ResolvePossibleScore(20, possible); !errors.Is(err, ErrPossibleScore) {
			t.Fatalf("expected possible score %v to be rejected, got %v", possible, err)
		}
	}
	if _, err := ResolvePossibleScore(25, 0); !errors.Is(err, ErrPossibleScore) {
		t.Fatalf("expected a raw score above the default to be rejected, got %v", err)
	}
}

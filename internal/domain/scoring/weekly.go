package scoring

import (
	"errors"
	"math"
)

const (
	SubCriterionMax      = 2
	DefaultPossibleScore = 20
	WeeklyScale          = 20
)

// opportunitySubCriteria are the ten items of the weekly opportunity rubric,
// each scored 0, 1 or 2.
var opportunitySubCriteria = []string{
	"needsDiscovery",
	"stakeholderMapping",
	"valueProposition",
	"objectionHandling",
	"proposalQuality",
	"pricingDiscipline",
	"nextStepsAgreed",
	"followUpTimeliness",
	"crmRecordComplete",
	"closingAttempt",
}

func OpportunitySubCriteria() []string {
	out := make([]string, len(opportunitySubCriteria))
	copy(out, opportunitySubCriteria)
	return out
}

// ScoreOpportunity sums the rubric items, clamping each to [0, 2]. Unknown
// keys are ignored.
func ScoreOpportunity(items map[string]int) float64 {
	raw := 0
	for _, key := range opportunitySubCriteria {
		value := items[key]
		if value < 0 {
			value = 0
		}
		if value > SubCriterionMax {
			value = SubCriterionMax
		}
		raw += value
	}
	return float64(raw)
}

var ErrPossibleScore = errors.New("possible score out of range")

// MaxOpportunityScore is the best raw score the rubric can award.
func MaxOpportunityScore() float64 {
	return float64(SubCriterionMax * len(opportunitySubCriteria))
}

// ResolvePossibleScore defaults an unset possible score and rejects one that
// is below scoreRaw or above the rubric maximum.
func ResolvePossibleScore(scoreRaw, possible float64) (float64, error) {
	if possible == 0 {
		possible = DefaultPossibleScore
	}
	if math.IsNaN(possible) || possible < scoreRaw || possible > MaxOpportunityScore() {
		return 0, ErrPossibleScore
	}
	return possible, nil
}

// WeeklyAverage is the mean of each evaluation's score rescaled to 0–20.
// Evaluations without possible points count as zero.
func WeeklyAverage(scores []WeeklyScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	total := 0.0
	for _, score := range scores {
		total += Percentage(nonNegative(score.ScoreRaw), nonNegative(score.PossibleScore)) / 100 * WeeklyScale
	}
	avg := total / float64(len(scores))
	if math.IsNaN(avg) {
		return 0
	}
	return avg
}

// ClassifyWeekly bands a 0–20 weekly average with the accumulated thresholds.
func ClassifyWeekly(average float64) string {
	return ClassifyAccumulated(average / WeeklyScale * 100)
}

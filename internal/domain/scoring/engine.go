// Package scoring turns objective/achieved KPI pairs into weighted monthly
// scores, classifies scores into rubric bands and rolls weekly opportunity
// evaluations up per employee. Nothing in this package performs I/O and every
// function is safe for concurrent use.
package scoring

import (
	"fmt"
	"math"
)

type Pair struct {
	Objective float64 `json:"objective"`
	Achieved  float64 `json:"achieved"`
}

type MonthlyInput struct {
	Metrics     map[CriterionID]Pair
	ExtraPoints float64
}

type CriterionResult struct {
	ID            CriterionID `json:"id"`
	Label         string      `json:"label"`
	Objective     float64     `json:"objective"`
	Achieved      float64     `json:"achieved"`
	Weight        float64     `json:"weight"`
	PonderedScore float64     `json:"ponderedScore"`
}

type MonthlyScore struct {
	Criteria    []CriterionResult `json:"criteria"`
	SubTotal    float64           `json:"subTotal"`
	ExtraPoints float64           `json:"extraPoints"`
	TotalScore  float64           `json:"totalScore"`
	Rubrica     string            `json:"rubrica"`
}

func (m MonthlyScore) Pondered(id CriterionID) float64 {
	for _, result := range m.Criteria {
		if result.ID == id {
			return result.PonderedScore
		}
	}
	return 0
}

type Engine struct {
	criteria Criteria
}

func NewEngine(criteria Criteria) (*Engine, error) {
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("scoring engine: %w", err)
	}
	owned := make(Criteria, len(criteria))
	copy(owned, criteria)
	return &Engine{criteria: owned}, nil
}

// DefaultEngine is built from DefaultCriteria and cannot fail.
func DefaultEngine() *Engine {
	return &Engine{criteria: DefaultCriteria()}
}

func (e *Engine) Criteria() Criteria {
	out := make(Criteria, len(e.criteria))
	copy(out, e.criteria)
	return out
}

// ScoreMonthly is the single entry point for initial submissions and
// revisions. Missing criteria score zero; negative values are clamped to
// zero before scoring.
func (e *Engine) ScoreMonthly(in MonthlyInput) MonthlyScore {
	results := make([]CriterionResult, 0, len(e.criteria))
	for _, criterion := range e.criteria {
		pair := in.Metrics[criterion.ID]
		objective := nonNegative(pair.Objective)
		achieved := nonNegative(pair.Achieved)
		results = append(results, CriterionResult{
			ID:            criterion.ID,
			Label:         criterion.Label,
			Objective:     objective,
			Achieved:      achieved,
			Weight:        criterion.Weight,
			PonderedScore: ScoreCriterion(achieved, objective, criterion.Weight),
		})
	}

	extra := nonNegative(in.ExtraPoints)
	subTotal, total := AggregateMonthly(results, extra)
	return MonthlyScore{
		Criteria:    results,
		SubTotal:    subTotal,
		ExtraPoints: extra,
		TotalScore:  total,
		Rubrica:     ClassifyMonthly(total),
	}
}

// ScoreCriterion awards proportional credit for achieved against objective,
// capped at weight. A missing, zero, negative or NaN objective earns nothing.
func ScoreCriterion(achieved, objective, weight float64) float64 {
	if math.IsNaN(objective) || objective <= 0 {
		return 0
	}
	if math.IsNaN(achieved) || math.IsNaN(weight) {
		return 0
	}
	if achieved >= objective {
		return weight
	}
	return (achieved / objective) * weight
}

func AggregateMonthly(results []CriterionResult, extraPoints float64) (subTotal, totalScore float64) {
	for _, result := range results {
		subTotal += result.PonderedScore
	}
	if math.IsNaN(extraPoints) {
		extraPoints = 0
	}
	return subTotal, subTotal + extraPoints
}

// Round2 rounds half away from zero to two decimals. Only presentation code
// should call it.
func Round2(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return math.Round(value*100) / 100
}

func nonNegative(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

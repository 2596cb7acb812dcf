package evaluations

import "salesperf/internal/domain/scoring"

// Rounded copies for responses and documents. Persisted values stay unrounded.

func (m MonthlyEvaluation) Rounded() MonthlyEvaluation {
	criteria := make([]scoring.CriterionResult, len(m.Criteria))
	for i, result := range m.Criteria {
		result.PonderedScore = scoring.Round2(result.PonderedScore)
		criteria[i] = result
	}
	m.Criteria = criteria
	m.SubTotal = scoring.Round2(m.SubTotal)
	m.ExtraPoints = scoring.Round2(m.ExtraPoints)
	m.TotalScore = scoring.Round2(m.TotalScore)
	return m
}

func (w WeeklyReport) Rounded() WeeklyReport {
	w.AverageScore = scoring.Round2(w.AverageScore)
	return w
}

func (a AccumulatedReport) Rounded() AccumulatedReport {
	summaries := make([]scoring.AccumulatedSummary, len(a.Summaries))
	for i, summary := range a.Summaries {
		summaries[i] = summary.Rounded()
	}
	a.Summaries = summaries
	return a
}

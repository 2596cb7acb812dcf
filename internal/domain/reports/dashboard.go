package reports

import (
	"sort"
	"time"

	"salesperf/internal/domain/evaluations"
	"salesperf/internal/domain/scoring"
)

const latestWeeklyLimit = 5

type MonthlyPoint struct {
	EvaluationID string    `json:"evaluationId"`
	Date         time.Time `json:"date"`
	Quarter      int       `json:"quarter"`
	TotalScore   float64   `json:"totalScore"`
	Rubrica      string    `json:"rubrica"`
}

type QuarterAverage struct {
	Quarter      int     `json:"quarter"`
	Evaluations  int     `json:"evaluations"`
	AverageScore float64 `json:"averageScore"`
	Rubrica      string  `json:"rubrica,omitempty"`
}

type WeeklyPoint struct {
	ReportID     string    `json:"reportId"`
	WeekStart    time.Time `json:"weekStart"`
	WeekEnd      time.Time `json:"weekEnd"`
	AverageScore float64   `json:"averageScore"`
	Rubrica      string    `json:"rubrica"`
}

// Dashboard is a presentation view; every score in it is rounded.
type Dashboard struct {
	Employee      scoring.EmployeeRef         `json:"employee"`
	Year          int                         `json:"year"`
	Monthly       []MonthlyPoint              `json:"monthly"`
	Quarters      []QuarterAverage            `json:"quarters"`
	AnnualAverage float64                     `json:"annualAverage"`
	AnnualRubrica string                      `json:"annualRubrica,omitempty"`
	LatestWeekly  []WeeklyPoint               `json:"latestWeekly"`
	Accumulated   *scoring.AccumulatedSummary `json:"accumulated,omitempty"`
}

// BuildDashboard assembles the yearly view for one employee. Quarter and
// annual averages are plain means of monthly totals classified on the monthly
// scale.
func BuildDashboard(employee scoring.EmployeeRef, year int, monthly []evaluations.MonthlyEvaluation, weekly []evaluations.WeeklyReport, accumulated *scoring.AccumulatedSummary) Dashboard {
	out := Dashboard{
		Employee:     employee,
		Year:         year,
		Monthly:      make([]MonthlyPoint, 0, len(monthly)),
		Quarters:     make([]QuarterAverage, 0, 4),
		LatestWeekly: make([]WeeklyPoint, 0, latestWeeklyLimit),
	}

	sorted := make([]evaluations.MonthlyEvaluation, len(monthly))
	copy(sorted, monthly)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EvaluationDate.Before(sorted[j].EvaluationDate) })

	var sums [4]float64
	var counts [4]int
	annual := 0.0
	for _, ev := range sorted {
		out.Monthly = append(out.Monthly, MonthlyPoint{
			EvaluationID: ev.ID,
			Date:         ev.EvaluationDate,
			Quarter:      ev.Quarter,
			TotalScore:   scoring.Round2(ev.TotalScore),
			Rubrica:      ev.Rubrica,
		})
		if ev.Quarter >= 1 && ev.Quarter <= 4 {
			sums[ev.Quarter-1] += ev.TotalScore
			counts[ev.Quarter-1]++
		}
		annual += ev.TotalScore
	}

	for i := 0; i < 4; i++ {
		q := QuarterAverage{Quarter: i + 1, Evaluations: counts[i]}
		if counts[i] > 0 {
			avg := sums[i] / float64(counts[i])
			q.AverageScore = scoring.Round2(avg)
			q.Rubrica = scoring.ClassifyMonthly(avg)
		}
		out.Quarters = append(out.Quarters, q)
	}
	if len(sorted) > 0 {
		avg := annual / float64(len(sorted))
		out.AnnualAverage = scoring.Round2(avg)
		out.AnnualRubrica = scoring.ClassifyMonthly(avg)
	}

	recent := make([]evaluations.WeeklyReport, len(weekly))
	copy(recent, weekly)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].WeekStart.After(recent[j].WeekStart) })
	for _, report := range recent {
		if len(out.LatestWeekly) == latestWeeklyLimit {
			break
		}
		out.LatestWeekly = append(out.LatestWeekly, WeeklyPoint{
			ReportID:     report.ID,
			WeekStart:    report.WeekStart,
			WeekEnd:      report.WeekEnd,
			AverageScore: scoring.Round2(report.AverageScore),
			Rubrica:      report.Rubrica,
		})
	}

	if accumulated != nil {
		summary := accumulated.Rounded()
		out.Accumulated = &summary
	}
	return out
}

package scoring

import (
	"sort"
	"time"
)

type EmployeeRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (e EmployeeRef) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// WeeklyScore is the slice of a weekly opportunity evaluation the roll-up needs.
type WeeklyScore struct {
	EmployeeID    string
	Employee      EmployeeRef
	ScoreRaw      float64
	PossibleScore float64
}

type AccumulatedSummary struct {
	Employee          EmployeeRef `json:"employee"`
	TotalEvaluaciones int         `json:"totalEvaluaciones"`
	TotalScore        float64     `json:"totalScore"`
	TotalPosibles     float64     `json:"totalPosibles"`
	Porcentaje        float64     `json:"porcentaje"`
	Rubrica           string      `json:"rubrica"`
	Year              int         `json:"year"`
	Trimestre         int         `json:"trimestre"`
}

func (s AccumulatedSummary) Rounded() AccumulatedSummary {
	s.TotalScore = Round2(s.TotalScore)
	s.TotalPosibles = Round2(s.TotalPosibles)
	s.Porcentaje = Round2(s.Porcentaje)
	return s
}

// DisplayPeriod is attached to summaries for display and never affects the
// numbers.
type DisplayPeriod struct {
	Year      int
	Trimestre int
}

// ResolveDisplayPeriod fills unpinned year or quarter from now.
func ResolveDisplayPeriod(year, quarter int, now time.Time) DisplayPeriod {
	if year <= 0 {
		year = now.Year()
	}
	if quarter < 1 || quarter > 4 {
		quarter = QuarterOf(now.Month())
	}
	return DisplayPeriod{Year: year, Trimestre: quarter}
}

func QuarterOf(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// Accumulate groups weekly scores by employee. An empty input yields an empty
// map.
func Accumulate(evaluations []WeeklyScore, period DisplayPeriod) map[string]AccumulatedSummary {
	out := map[string]AccumulatedSummary{}
	for _, evaluation := range evaluations {
		summary, ok := out[evaluation.EmployeeID]
		if !ok {
			summary = AccumulatedSummary{
				Employee:  evaluation.Employee,
				Year:      period.Year,
				Trimestre: period.Trimestre,
			}
			if summary.Employee.ID == "" {
				summary.Employee.ID = evaluation.EmployeeID
			}
		}
		summary.TotalEvaluaciones++
		summary.TotalScore += nonNegative(evaluation.ScoreRaw)
		summary.TotalPosibles += nonNegative(evaluation.PossibleScore)
		out[evaluation.EmployeeID] = summary
	}

	for id, summary := range out {
		summary.Porcentaje = Percentage(summary.TotalScore, summary.TotalPosibles)
		summary.Rubrica = ClassifyAccumulated(summary.Porcentaje)
		out[id] = summary
	}
	return out
}

// SortedSummaries orders summaries by percentage, best first, then by name.
func SortedSummaries(summaries map[string]AccumulatedSummary) []AccumulatedSummary {
	out := make([]AccumulatedSummary, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Porcentaje != out[j].Porcentaje {
			return out[i].Porcentaje > out[j].Porcentaje
		}
		if out[i].Employee.FullName() != out[j].Employee.FullName() {
			return out[i].Employee.FullName() < out[j].Employee.FullName()
		}
		return out[i].Employee.ID < out[j].Employee.ID
	})
	return out
}

func Percentage(score, possible float64) float64 {
	if possible > 0 {
		return score / possible * 100
	}
	return 0
}

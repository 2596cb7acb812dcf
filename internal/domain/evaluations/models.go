package evaluations

import (
	"time"

	"salesperf/internal/domain/scoring"
)

// MonthlyEvaluation is a persisted monthly KPI assessment. Scores are stored
// unrounded.
type MonthlyEvaluation struct {
	ID             string                    `json:"id"`
	EmployeeID     string                    `json:"employeeId"`
	EvaluatorID    string                    `json:"evaluatorId"`
	Employee       scoring.EmployeeRef       `json:"employee"`
	EvaluationDate time.Time                 `json:"evaluationDate"`
	Quarter        int                       `json:"quarter"`
	Year           int                       `json:"year"`
	Criteria       []scoring.CriterionResult `json:"criteria"`
	SubTotal       float64                   `json:"subTotal"`
	ExtraPoints    float64                   `json:"extraPoints"`
	TotalScore     float64                   `json:"totalScore"`
	Rubrica        string                    `json:"rubrica"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
}

func (m MonthlyEvaluation) Score() scoring.MonthlyScore {
	return scoring.MonthlyScore{
		Criteria:    m.Criteria,
		SubTotal:    m.SubTotal,
		ExtraPoints: m.ExtraPoints,
		TotalScore:  m.TotalScore,
		Rubrica:     m.Rubrica,
	}
}

func (m *MonthlyEvaluation) applyScore(score scoring.MonthlyScore) {
	m.Criteria = score.Criteria
	m.SubTotal = score.SubTotal
	m.ExtraPoints = score.ExtraPoints
	m.TotalScore = score.TotalScore
	m.Rubrica = score.Rubrica
}

type MonthlyDraft struct {
	EmployeeID     string
	EvaluatorID    string
	EvaluationDate time.Time
	Quarter        int
	Year           int
	Submission     scoring.MonthlySubmission
}

type MonthlyFilter struct {
	EmployeeID string
	Year       int
	Quarter    int
	Limit      int
	Offset     int
}

type OpportunityEvaluation struct {
	ID             string         `json:"id"`
	ReportID       string         `json:"reportId"`
	EmployeeID     string         `json:"employeeId"`
	EvaluatorID    string         `json:"evaluatorId"`
	OpportunityID  string         `json:"opportunityId,omitempty"`
	EvaluationDate time.Time      `json:"evaluationDate"`
	Items          map[string]int `json:"items"`
	ScoreRaw       float64        `json:"scoreRaw"`
	PossibleScore  float64        `json:"possibleScore"`
	Comments       string         `json:"comments,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (o OpportunityEvaluation) WeeklyScore(employee scoring.EmployeeRef) scoring.WeeklyScore {
	return scoring.WeeklyScore{
		EmployeeID:    o.EmployeeID,
		Employee:      employee,
		ScoreRaw:      o.ScoreRaw,
		PossibleScore: o.PossibleScore,
	}
}

type WeeklyReport struct {
	ID           string                  `json:"id"`
	EmployeeID   string                  `json:"employeeId"`
	EvaluatorID  string                  `json:"evaluatorId"`
	Employee     scoring.EmployeeRef     `json:"employee"`
	WeekStart    time.Time               `json:"weekStart"`
	WeekEnd      time.Time               `json:"weekEnd"`
	AverageScore float64                 `json:"averageScore"`
	Rubrica      string                  `json:"rubrica"`
	Notes        string                  `json:"notes,omitempty"`
	Evaluations  []OpportunityEvaluation `json:"evaluations"`
	CreatedAt    time.Time               `json:"createdAt"`
}

type OpportunityDraft struct {
	OpportunityID  string
	EvaluationDate time.Time
	Items          map[string]int
	PossibleScore  float64
	Comments       string
}

type WeeklyDraft struct {
	EmployeeID  string
	EvaluatorID string
	WeekStart   time.Time
	WeekEnd     time.Time
	Notes       string
	Evaluations []OpportunityDraft
}

type WeeklyFilter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// AccumulatedReport is the roll-up for one resolved period. To is exclusive.
type AccumulatedReport struct {
	From      time.Time                    `json:"from"`
	To        time.Time                    `json:"to"`
	Year      int                          `json:"year"`
	Trimestre int                          `json:"trimestre"`
	Summaries []scoring.AccumulatedSummary `json:"summaries"`
}

type ScoredEvent struct {
	Type         string    `json:"type"`
	EvaluationID string    `json:"evaluationId"`
	EmployeeID   string    `json:"employeeId"`
	EvaluatorID  string    `json:"evaluatorId"`
	Score        float64   `json:"score"`
	Rubrica      string    `json:"rubrica"`
	Year         int       `json:"year"`
	Quarter      int       `json:"quarter"`
	OccurredAt   time.Time `json:"occurredAt"`
}

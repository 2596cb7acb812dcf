package evaluations

const (
	EventMonthlyScored = "evaluation.monthly.scored"
	EventWeeklyScored  = "evaluation.weekly.scored"
)

const (
	MinYear = 2000
	MaxYear = 2100
)

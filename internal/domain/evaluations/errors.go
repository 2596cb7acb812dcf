package evaluations

import "errors"

var (
	ErrEvaluationNotFound  = errors.New("evaluation not found")
	ErrReportNotFound      = errors.New("weekly report not found")
	ErrDuplicateEvaluation = errors.New("an evaluation already exists for this employee and period")
	ErrDuplicateReport     = errors.New("a weekly report already exists for this employee and week")
	ErrInvalidPeriod       = errors.New("invalid period")
	ErrInvalidEvaluation   = errors.New("invalid evaluation")
	ErrForbidden           = errors.New("forbidden")
)

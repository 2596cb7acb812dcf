package evaluations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesperf/internal/domain/scoring"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) EmployeeRef(ctx context.Context, employeeID string) (scoring.EmployeeRef, error) {
	ref := scoring.EmployeeRef{ID: employeeID}
	err := s.DB.QueryRow(ctx, "SELECT first_name, last_name FROM employees WHERE id = $1", employeeID).Scan(&ref.FirstName, &ref.LastName)
	if isMissing(err) {
		return scoring.EmployeeRef{}, fmt.Errorf("%w: unknown employee %s", ErrInvalidEvaluation, employeeID)
	}
	return ref, err
}

func (s *Store) CreateMonthly(ctx context.Context, ev MonthlyEvaluation) (string, error) {
	criteriaJSON, err := json.Marshal(ev.Criteria)
	if err != nil {
		return "", err
	}
	score := ev.Score()
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO monthly_evaluations (employee_id, evaluator_id, evaluation_date, quarter, year, criteria_json,
      sales_goal_pondered, activity_pondered, creation_pondered, conversion_pondered, crm_pondered,
      sub_total, extra_points, total_score, rubrica)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
    RETURNING id
  `,
		ev.EmployeeID, ev.EvaluatorID, ev.EvaluationDate, ev.Quarter, ev.Year, criteriaJSON,
		score.Pondered(scoring.CriterionSalesGoal),
		score.Pondered(scoring.CriterionActivity),
		score.Pondered(scoring.CriterionOpportunityCreation),
		score.Pondered(scoring.CriterionOpportunityConversion),
		score.Pondered(scoring.CriterionCRMFollowUp),
		ev.SubTotal, ev.ExtraPoints, ev.TotalScore, ev.Rubrica,
	).Scan(&id)
	if err != nil {
		return "", mapWriteError(err, ErrDuplicateEvaluation)
	}
	return id, nil
}

func (s *Store) UpdateMonthlyScore(ctx context.Context, ev MonthlyEvaluation) error {
	criteriaJSON, err := json.Marshal(ev.Criteria)
	if err != nil {
		return err
	}
	score := ev.Score()
	tag, err := s.DB.Exec(ctx, `
    UPDATE monthly_evaluations
    SET criteria_json = $1,
        sales_goal_pondered = $2, activity_pondered = $3, creation_pondered = $4,
        conversion_pondered = $5, crm_pondered = $6,
        sub_total = $7, extra_points = $8, total_score = $9, rubrica = $10,
        updated_at = now()
    WHERE id = $11
  `, criteriaJSON,
		score.Pondered(scoring.CriterionSalesGoal),
		score.Pondered(scoring.CriterionActivity),
		score.Pondered(scoring.CriterionOpportunityCreation),
		score.Pondered(scoring.CriterionOpportunityConversion),
		score.Pondered(scoring.CriterionCRMFollowUp),
		ev.SubTotal, ev.ExtraPoints, ev.TotalScore, ev.Rubrica, ev.ID)
	if pgCode(err) == codeInvalidText {
		return ErrEvaluationNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEvaluationNotFound
	}
	return nil
}

const monthlyColumns = `m.id, m.employee_id, m.evaluator_id, e.first_name, e.last_name,
           m.evaluation_date, m.quarter, m.year, m.criteria_json,
           m.sub_total, m.extra_points, m.total_score, m.rubrica, m.created_at, m.updated_at`

func scanMonthly(row pgx.Row) (MonthlyEvaluation, error) {
	var ev MonthlyEvaluation
	var criteriaJSON []byte
	err := row.Scan(
		&ev.ID, &ev.EmployeeID, &ev.EvaluatorID, &ev.Employee.FirstName, &ev.Employee.LastName,
		&ev.EvaluationDate, &ev.Quarter, &ev.Year, &criteriaJSON,
		&ev.SubTotal, &ev.ExtraPoints, &ev.TotalScore, &ev.Rubrica, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return MonthlyEvaluation{}, err
	}
	ev.Employee.ID = ev.EmployeeID
	if len(criteriaJSON) > 0 {
		if err := json.Unmarshal(criteriaJSON, &ev.Criteria); err != nil {
			return MonthlyEvaluation{}, fmt.Errorf("decode criteria for %s: %w", ev.ID, err)
		}
	}
	return ev, nil
}

func (s *Store) GetMonthly(ctx context.Context, evaluationID string) (MonthlyEvaluation, error) {
	ev, err := scanMonthly(s.DB.QueryRow(ctx, `
    SELECT `+monthlyColumns+`
    FROM monthly_evaluations m
    JOIN employees e ON e.id = m.employee_id
    WHERE m.id = $1
  `, evaluationID))
	if isMissing(err) {
		return MonthlyEvaluation{}, ErrEvaluationNotFound
	}
	return ev, err
}

func (s *Store) ListMonthly(ctx context.Context, filter MonthlyFilter) ([]MonthlyEvaluation, int, error) {
	where := `
    WHERE ($1 = '' OR m.employee_id::text = $1)
      AND ($2 = 0 OR m.year = $2)
      AND ($3 = 0 OR m.quarter = $3)`

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM monthly_evaluations m"+where,
		filter.EmployeeID, filter.Year, filter.Quarter).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT `+monthlyColumns+`
    FROM monthly_evaluations m
    JOIN employees e ON e.id = m.employee_id`+where+`
    ORDER BY m.evaluation_date DESC, m.created_at DESC
    LIMIT $4 OFFSET $5
  `, filter.EmployeeID, filter.Year, filter.Quarter, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []MonthlyEvaluation
	for rows.Next() {
		ev, err := scanMonthly(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ev)
	}
	return out, total, rows.Err()
}

func (s *Store) DeleteMonthly(ctx context.Context, evaluationIDs []string) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM monthly_evaluations WHERE id::text = ANY($1)", evaluationIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) CreateWeeklyReport(ctx context.Context, report WeeklyReport) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var reportID string
	err = tx.QueryRow(ctx, `
    INSERT INTO weekly_reports (employee_id, evaluator_id, week_start, week_end, average_score, rubrica, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, report.EmployeeID, report.EvaluatorID, report.WeekStart, report.WeekEnd, report.AverageScore, report.Rubrica, nullIfEmpty(report.Notes)).Scan(&reportID)
	if err != nil {
		return "", mapWriteError(err, ErrDuplicateReport)
	}

	for _, ev := range report.Evaluations {
		itemsJSON, err := json.Marshal(ev.Items)
		if err != nil {
			return "", err
		}
		if _, err := tx.Exec(ctx, `
      INSERT INTO weekly_opportunity_evaluations (report_id, employee_id, evaluator_id, opportunity_id,
        evaluation_date, items_json, score_raw, possible_score, comments)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `, reportID, report.EmployeeID, report.EvaluatorID, nullIfEmpty(ev.OpportunityID),
			ev.EvaluationDate, itemsJSON, ev.ScoreRaw, ev.PossibleScore, nullIfEmpty(ev.Comments)); err != nil {
			return "", mapWriteError(err, ErrDuplicateReport)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return reportID, nil
}

const weeklyColumns = `w.id, w.employee_id, w.evaluator_id, e.first_name, e.last_name,
           w.week_start, w.week_end, w.average_score, w.rubrica, COALESCE(w.notes, ''), w.created_at`

func scanWeekly(row pgx.Row) (WeeklyReport, error) {
	var report WeeklyReport
	err := row.Scan(
		&report.ID, &report.EmployeeID, &report.EvaluatorID, &report.Employee.FirstName, &report.Employee.LastName,
		&report.WeekStart, &report.WeekEnd, &report.AverageScore, &report.Rubrica, &report.Notes, &report.CreatedAt,
	)
	report.Employee.ID = report.EmployeeID
	return report, err
}

func (s *Store) GetWeeklyReport(ctx context.Context, reportID string) (WeeklyReport, error) {
	report, err := scanWeekly(s.DB.QueryRow(ctx, `
    SELECT `+weeklyColumns+`
    FROM weekly_reports w
    JOIN employees e ON e.id = w.employee_id
    WHERE w.id = $1
  `, reportID))
	if isMissing(err) {
		return WeeklyReport{}, ErrReportNotFound
	}
	if err != nil {
		return WeeklyReport{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, report_id, employee_id, evaluator_id, COALESCE(opportunity_id::text, ''), evaluation_date,
           items_json, score_raw, possible_score, COALESCE(comments, ''), created_at
    FROM weekly_opportunity_evaluations
    WHERE report_id = $1
    ORDER BY evaluation_date, created_at
  `, reportID)
	if err != nil {
		return WeeklyReport{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var ev OpportunityEvaluation
		var itemsJSON []byte
		if err := rows.Scan(&ev.ID, &ev.ReportID, &ev.EmployeeID, &ev.EvaluatorID, &ev.OpportunityID, &ev.EvaluationDate,
			&itemsJSON, &ev.ScoreRaw, &ev.PossibleScore, &ev.Comments, &ev.CreatedAt); err != nil {
			return WeeklyReport{}, err
		}
		if len(itemsJSON) > 0 {
			if err := json.Unmarshal(itemsJSON, &ev.Items); err != nil {
				return WeeklyReport{}, fmt.Errorf("decode items for %s: %w", ev.ID, err)
			}
		}
		report.Evaluations = append(report.Evaluations, ev)
	}
	return report, rows.Err()
}

func (s *Store) ListWeeklyReports(ctx context.Context, filter WeeklyFilter) ([]WeeklyReport, int, error) {
	where := `
    WHERE ($1 = '' OR w.employee_id::text = $1)
      AND ($2::date IS NULL OR w.week_start >= $2)
      AND ($3::date IS NULL OR w.week_start < $3)`
	from, to := nullIfZero(filter.From), nullIfZero(filter.To)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM weekly_reports w"+where, filter.EmployeeID, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT `+weeklyColumns+`
    FROM weekly_reports w
    JOIN employees e ON e.id = w.employee_id`+where+`
    ORDER BY w.week_start DESC
    LIMIT $4 OFFSET $5
  `, filter.EmployeeID, from, to, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []WeeklyReport
	for rows.Next() {
		report, err := scanWeekly(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, report)
	}
	return out, total, rows.Err()
}

func (s *Store) ListWeeklyScores(ctx context.Context, employeeID string, from, to time.Time) ([]scoring.WeeklyScore, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT w.employee_id, e.first_name, e.last_name, w.score_raw, w.possible_score
    FROM weekly_opportunity_evaluations w
    JOIN employees e ON e.id = w.employee_id
    WHERE w.evaluation_date >= $1 AND w.evaluation_date < $2
      AND ($3 = '' OR w.employee_id::text = $3)
    ORDER BY w.evaluation_date
  `, from, to, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scoring.WeeklyScore
	for rows.Next() {
		var score scoring.WeeklyScore
		if err := rows.Scan(&score.EmployeeID, &score.Employee.FirstName, &score.Employee.LastName, &score.ScoreRaw, &score.PossibleScore); err != nil {
			return nil, err
		}
		score.Employee.ID = score.EmployeeID
		out = append(out, score)
	}
	return out, rows.Err()
}

const (
	codeInvalidText     = "22P02"
	codeForeignKey      = "23503"
	codeUniqueViolation = "23505"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isMissing reports whether a lookup found nothing, counting ids that are
// not valid UUIDs.
func isMissing(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidText
}

func mapWriteError(err, duplicate error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return duplicate
	case codeForeignKey:
		return fmt.Errorf("%w: referenced record does not exist (%s)", ErrInvalidEvaluation, pgErr.ConstraintName)
	case codeInvalidText:
		return fmt.Errorf("%w: malformed identifier", ErrInvalidEvaluation)
	}
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullIfZero(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value
}

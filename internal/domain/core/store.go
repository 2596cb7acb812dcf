package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `id, COALESCE(employee_number, ''), first_name, last_name, email,
           COALESCE(position, ''), status, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.EmployeeNumber, &emp.FirstName, &emp.LastName, &emp.Email,
		&emp.Position, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt)
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context, status string, limit, offset int) ([]Employee, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE ($1 = '' OR status = $1)
  `, status).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE ($1 = '' OR status = $1)
    ORDER BY last_name, first_name
    LIMIT $2 OFFSET $3
  `, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, emp)
	}
	return out, total, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, employeeID))
	if isMissing(err) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) CreateEmployee(ctx context.Context, emp Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (employee_number, first_name, last_name, email, position, status)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, nullIfEmpty(emp.EmployeeNumber), emp.FirstName, emp.LastName, emp.Email, nullIfEmpty(emp.Position), emp.Status).Scan(&id)
	if err != nil {
		return "", mapUniqueViolation(err)
	}
	return id, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employeeID string, emp Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET employee_number = $1, first_name = $2, last_name = $3, email = $4, position = $5, status = $6, updated_at = now()
    WHERE id = $7
  `, nullIfEmpty(emp.EmployeeNumber), emp.FirstName, emp.LastName, emp.Email, nullIfEmpty(emp.Position), emp.Status, employeeID)
	if isMissing(err) {
		return ErrEmployeeNotFound
	}
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

const opportunityColumns = `id, employee_id, name, COALESCE(client_name, ''), stage, amount, created_at, updated_at`

func scanOpportunity(row pgx.Row) (Opportunity, error) {
	var opp Opportunity
	err := row.Scan(&opp.ID, &opp.EmployeeID, &opp.Name, &opp.ClientName, &opp.Stage, &opp.Amount, &opp.CreatedAt, &opp.UpdatedAt)
	return opp, err
}

func (s *Store) ListOpportunities(ctx context.Context, employeeID string, limit, offset int) ([]Opportunity, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM opportunities WHERE ($1 = '' OR employee_id::text = $1)
  `, employeeID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT `+opportunityColumns+`
    FROM opportunities
    WHERE ($1 = '' OR employee_id::text = $1)
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, employeeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, opp)
	}
	return out, total, rows.Err()
}

func (s *Store) GetOpportunity(ctx context.Context, opportunityID string) (Opportunity, error) {
	opp, err := scanOpportunity(s.DB.QueryRow(ctx, `
    SELECT `+opportunityColumns+`
    FROM opportunities
    WHERE id = $1
  `, opportunityID))
	if isMissing(err) {
		return Opportunity{}, ErrOpportunityNotFound
	}
	return opp, err
}

func (s *Store) CreateOpportunity(ctx context.Context, opp Opportunity) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO opportunities (employee_id, name, client_name, stage, amount)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, opp.EmployeeID, opp.Name, nullIfEmpty(opp.ClientName), opp.Stage, opp.Amount).Scan(&id)
	if err != nil {
		if code := pgCode(err); code == "23503" || code == "22P02" {
			return "", ErrEmployeeNotFound
		}
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateOpportunityStage(ctx context.Context, opportunityID, stage string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE opportunities SET stage = $1, updated_at = now() WHERE id = $2", stage, opportunityID)
	if isMissing(err) {
		return ErrOpportunityNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOpportunityNotFound
	}
	return nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isMissing treats ids that are not valid UUIDs (22P02) like absent rows.
func isMissing(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgCode(err) == "22P02"
}

func mapUniqueViolation(err error) error {
	if pgCode(err) == "23505" {
		return ErrDuplicateEmployee
	}
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

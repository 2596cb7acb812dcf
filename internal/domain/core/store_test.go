package core

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestStoreErrorMapping(t *testing.T) {
	if !isMissing(pgx.ErrNoRows) || !isMissing(&pgconn.PgError{Code: "22P02"}) {
		t.Fatal("expected absent rows and malformed ids to count as missing")
	}
	if isMissing(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation is not a missing row")
	}
	if err := mapUniqueViolation(&pgconn.PgError{Code: "23505"}); !errors.Is(err, ErrDuplicateEmployee) {
		t.Fatalf("expected duplicate employee, got %v", err)
	}
	if pgCode(errors.New("boom")) != "" {
		t.Fatal("expected no code for a plain error")
	}
}

package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("employeeId", " ", "is required")
	v.Enum("stage", "closed", []string{"open", "won"}, "must be a known stage")
	start, _ := v.Date("weekStart", "2025-06-09")
	end, _ := v.Date("weekEnd", "2025-06-02")
	v.DateOrder("weekStart", start, "weekEnd", end)

	issues := v.Issues()
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %+v", issues)
	}
	if issues[0].Field != "employeeId" || issues[len(issues)-1].Field != "weekStart" {
		t.Fatalf("expected issues sorted by field, got %+v", issues)
	}
}

func TestValidatorReject(t *testing.T) {
	v := NewValidator()
	rec := httptest.NewRecorder()
	if v.Reject(rec, "req-1") {
		t.Fatal("expected no rejection without issues")
	}

	v.Add("date", "must be a valid date in YYYY-MM-DD format")
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected rejection")
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "validation_error") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20", nil)
	page := ParsePagination(req, 50, 200)
	if page.Limit != 200 || page.Offset != 20 {
		t.Fatalf("unexpected pagination %+v", page)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=-1&offset=x", nil)
	page = ParsePagination(req, 50, 200)
	if page.Limit != 50 || page.Offset != 0 {
		t.Fatalf("expected defaults, got %+v", page)
	}
}

func TestParseDate(t *testing.T) {
	if got, err := ParseDate("2025-03-31"); err != nil || got.Day() != 31 {
		t.Fatalf("unexpected result %v %v", got, err)
	}
	if got, err := ParseDate(""); err != nil || !got.IsZero() {
		t.Fatalf("expected zero time for empty input, got %v %v", got, err)
	}
	if _, err := ParseDate("31/03/2025"); err == nil {
		t.Fatal("expected error for unsupported layout")
	}
}

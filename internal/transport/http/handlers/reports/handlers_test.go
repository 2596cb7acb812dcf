package reportshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"salesperf/internal/domain/auth"
	"salesperf/internal/domain/core"
	"salesperf/internal/domain/evaluations"
	"salesperf/internal/domain/reports"
	"salesperf/internal/domain/scoring"
	"salesperf/internal/platform/jobs"
	"salesperf/internal/transport/http/middleware"
)

type rolePerms struct{}

func (rolePerms) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	for _, granted := range auth.RolePermissions[roleID] {
		if granted == permission {
			return true, nil
		}
	}
	return false, nil
}

type fakeService struct {
	lastQuery    evaluations.PeriodQuery
	lastEmployee string
	archived     []evaluations.PeriodQuery
	current      int
}

func (f *fakeService) Accumulated(_ context.Context, query evaluations.PeriodQuery, employeeID string) (evaluations.AccumulatedReport, error) {
	if _, err := evaluations.ResolvePeriod(query, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		return evaluations.AccumulatedReport{}, err
	}
	f.lastQuery, f.lastEmployee = query, employeeID
	return evaluations.AccumulatedReport{Year: 2025, Trimestre: 2, Summaries: []scoring.AccumulatedSummary{
		{Employee: scoring.EmployeeRef{ID: "e1"}, Porcentaje: 83.3333, Rubrica: scoring.RubricaBueno},
	}}, nil
}

func (f *fakeService) AccumulatedPDF(ctx context.Context, query evaluations.PeriodQuery, employeeID string) ([]byte, evaluations.AccumulatedReport, error) {
	report, err := f.Accumulated(ctx, query, employeeID)
	return []byte("%PDF-1.3"), report, err
}

func (f *fakeService) MonthlyPDF(_ context.Context, id string) ([]byte, evaluations.MonthlyEvaluation, error) {
	if id != "m1" {
		return nil, evaluations.MonthlyEvaluation{}, evaluations.ErrEvaluationNotFound
	}
	return []byte("%PDF-1.3"), evaluations.MonthlyEvaluation{ID: "m1", EmployeeID: "e2"}, nil
}

func (f *fakeService) EmployeeDashboard(_ context.Context, employeeID string, year int) (reports.Dashboard, error) {
	if employeeID == "ghost" {
		return reports.Dashboard{}, core.ErrEmployeeNotFound
	}
	return reports.Dashboard{Employee: scoring.EmployeeRef{ID: employeeID}, Year: year}, nil
}

func (f *fakeService) Archive(_ context.Context, query evaluations.PeriodQuery) (map[string]any, error) {
	f.archived = append(f.archived, query)
	return map[string]any{"path": "x.pdf"}, nil
}

func (f *fakeService) ArchiveCurrentQuarter(context.Context) (map[string]any, error) {
	f.current++
	return map[string]any{"path": "current.pdf"}, nil
}

func (f *fakeService) JobRuns(_ context.Context, jobType string, _, _ int) ([]reports.JobRun, int, error) {
	return []reports.JobRun{{ID: "r1", JobType: jobType, Status: jobs.StatusCompleted}}, 1, nil
}

type fakeQueue struct {
	full bool
	runs []jobs.RunFunc
}

func (q *fakeQueue) Enqueue(jobType string, run jobs.RunFunc) bool {
	if q.full || jobType != jobs.JobReportArchive {
		return false
	}
	q.runs = append(q.runs, run)
	return true
}

var (
	evaluator = auth.UserContext{UserID: "u-eval", RoleID: auth.RoleEvaluator, RoleName: auth.RoleEvaluator}
	employee  = auth.UserContext{UserID: "u-emp", RoleID: auth.RoleEmployee, RoleName: auth.RoleEmployee, EmployeeID: "e1"}
)

func serve(svc *fakeService, queue *fakeQueue, user auth.UserContext, method, path string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
		})
	})
	NewHandler(svc, queue, rolePerms{}).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestAccumulated(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, &fakeQueue{}, evaluator, http.MethodGet, "/reports/accumulated?quarter=2&year=2025")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastQuery.Quarter != 2 || svc.lastQuery.Year != 2025 || svc.lastEmployee != "" {
		t.Fatalf("unexpected query %+v %q", svc.lastQuery, svc.lastEmployee)
	}
	var env struct {
		Data evaluations.AccumulatedReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if env.Data.Summaries[0].Porcentaje != 83.33 {
		t.Fatalf("expected rounded percentage, got %v", env.Data.Summaries[0].Porcentaje)
	}
}

func TestAccumulatedRejectsBadPeriods(t *testing.T) {
	cases := []string{
		"/reports/accumulated?month=abc",
		"/reports/accumulated?from=2025-06-01",
		"/reports/accumulated?month=5&quarter=3",
		"/reports/accumulated?year=1999",
	}
	for _, path := range cases {
		if rec := serve(&fakeService{}, &fakeQueue{}, evaluator, http.MethodGet, path); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestAccumulatedPinnedForEmployees(t *testing.T) {
	svc := &fakeService{}
	if rec := serve(svc, &fakeQueue{}, employee, http.MethodGet, "/reports/accumulated"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastEmployee != "e1" {
		t.Fatalf("expected roll-up pinned to caller, got %q", svc.lastEmployee)
	}
	if rec := serve(svc, &fakeQueue{}, employee, http.MethodGet, "/reports/accumulated?employeeId=e2"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAccumulatedPDF(t *testing.T) {
	rec := serve(&fakeService{}, &fakeQueue{}, evaluator, http.MethodGet, "/reports/accumulated/pdf?year=2025&quarter=2")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Content-Disposition") != `attachment; filename="acumulado-2025-T2.pdf"` {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
}

func TestArchiveEnqueues(t *testing.T) {
	svc := &fakeService{}
	queue := &fakeQueue{}
	if rec := serve(svc, queue, employee, http.MethodPost, "/reports/accumulated/archive"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employees, got %d", rec.Code)
	}

	rec := serve(svc, queue, evaluator, http.MethodPost, "/reports/accumulated/archive")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	rec = serve(svc, queue, evaluator, http.MethodPost, "/reports/accumulated/archive?year=2024&quarter=4")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(queue.runs) != 2 {
		t.Fatalf("expected two queued runs, got %d", len(queue.runs))
	}
	for _, run := range queue.runs {
		if _, err := run(context.Background()); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	}
	if svc.current != 1 || len(svc.archived) != 1 || svc.archived[0].Year != 2024 {
		t.Fatalf("unexpected archive calls current=%d archived=%+v", svc.current, svc.archived)
	}

	if rec := serve(svc, &fakeQueue{full: true}, evaluator, http.MethodPost, "/reports/accumulated/archive"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the queue is full, got %d", rec.Code)
	}
}

func TestDashboardAccess(t *testing.T) {
	svc := &fakeService{}
	if rec := serve(svc, &fakeQueue{}, employee, http.MethodGet, "/reports/employees/e1/dashboard?year=2025"); rec.Code != http.StatusOK {
		t.Fatalf("expected own dashboard, got %d", rec.Code)
	}
	if rec := serve(svc, &fakeQueue{}, employee, http.MethodGet, "/reports/employees/e2/dashboard"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := serve(svc, &fakeQueue{}, evaluator, http.MethodGet, "/reports/employees/ghost/dashboard"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := serve(svc, &fakeQueue{}, evaluator, http.MethodGet, "/reports/employees/e1/dashboard?year=3000"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMonthlyPDFScoping(t *testing.T) {
	if rec := serve(&fakeService{}, &fakeQueue{}, employee, http.MethodGet, "/reports/evaluations/monthly/m1/pdf"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign evaluation, got %d", rec.Code)
	}
	rec := serve(&fakeService{}, &fakeQueue{}, evaluator, http.MethodGet, "/reports/evaluations/monthly/m1/pdf")
	if rec.Code != http.StatusOK || rec.Body.String() != "%PDF-1.3" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestJobRuns(t *testing.T) {
	rec := serve(&fakeService{}, &fakeQueue{}, evaluator, http.MethodGet, "/reports/jobs?jobType=report_archive")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Total-Count") != "1" {
		t.Fatalf("unexpected response %d", rec.Code)
	}
	if rec := serve(&fakeService{}, &fakeQueue{}, employee, http.MethodGet, "/reports/jobs"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

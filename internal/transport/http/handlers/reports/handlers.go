package reportshandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"salesperf/internal/domain/auth"
	"salesperf/internal/domain/core"
	"salesperf/internal/domain/evaluations"
	"salesperf/internal/domain/reports"
	"salesperf/internal/platform/jobs"
	"salesperf/internal/transport/http/api"
	"salesperf/internal/transport/http/middleware"
	"salesperf/internal/transport/http/shared"
)

type Service interface {
	Accumulated(ctx context.Context, query evaluations.PeriodQuery, employeeID string) (evaluations.AccumulatedReport, error)
	AccumulatedPDF(ctx context.Context, query evaluations.PeriodQuery, employeeID string) ([]byte, evaluations.AccumulatedReport, error)
	MonthlyPDF(ctx context.Context, evaluationID string) ([]byte, evaluations.MonthlyEvaluation, error)
	EmployeeDashboard(ctx context.Context, employeeID string, year int) (reports.Dashboard, error)
	Archive(ctx context.Context, query evaluations.PeriodQuery) (map[string]any, error)
	ArchiveCurrentQuarter(ctx context.Context) (map[string]any, error)
	JobRuns(ctx context.Context, jobType string, limit, offset int) ([]reports.JobRun, int, error)
}

type Queue interface {
	Enqueue(jobType string, run jobs.RunFunc) bool
}

type Handler struct {
	Service Service
	Jobs    Queue
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, queue Queue, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Jobs: queue, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermReportsRead, h.Perms)
	write := middleware.RequirePermission(auth.PermReportsWrite, h.Perms)

	r.Route("/reports", func(r chi.Router) {
		r.With(read).Get("/accumulated", h.handleAccumulated)
		r.With(read).Get("/accumulated/pdf", h.handleAccumulatedPDF)
		r.With(write).Post("/accumulated/archive", h.handleArchive)
		r.With(read).Get("/employees/{employeeID}/dashboard", h.handleDashboard)
		r.With(read).Get("/evaluations/monthly/{evaluationID}/pdf", h.handleMonthlyPDF)
		r.With(read).Get("/jobs", h.handleJobRuns)
	})
}

func (h *Handler) handleAccumulated(w http.ResponseWriter, r *http.Request) {
	query, employeeID, ok := h.periodRequest(w, r)
	if !ok {
		return
	}
	report, err := h.Service.Accumulated(r.Context(), query, employeeID)
	if err != nil {
		writeError(w, r, err, "accumulated_failed")
		return
	}
	api.Success(w, report.Rounded(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAccumulatedPDF(w http.ResponseWriter, r *http.Request) {
	query, employeeID, ok := h.periodRequest(w, r)
	if !ok {
		return
	}
	body, report, err := h.Service.AccumulatedPDF(r.Context(), query, employeeID)
	if err != nil {
		writeError(w, r, err, "accumulated_pdf_failed")
		return
	}
	api.Binary(w, "application/pdf", fmt.Sprintf("acumulado-%d-T%d.pdf", report.Year, report.Trimestre), body)
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	validator := shared.NewValidator()
	query := parsePeriodQuery(r, validator)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	if _, err := evaluations.ResolvePeriod(query, time.Now()); err != nil {
		writeError(w, r, err, "archive_failed")
		return
	}

	run := func(ctx context.Context) (any, error) {
		if query == (evaluations.PeriodQuery{}) {
			return h.Service.ArchiveCurrentQuarter(ctx)
		}
		return h.Service.Archive(ctx, query)
	}
	if !h.Jobs.Enqueue(jobs.JobReportArchive, run) {
		api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, retry later", middleware.GetRequestID(r.Context()))
		return
	}
	api.Accepted(w, map[string]any{"jobType": jobs.JobReportArchive, "queued": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employeeID := chi.URLParam(r, "employeeID")
	if user.RoleName == auth.RoleEmployee && user.EmployeeID != employeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "employees can only view their own dashboard", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	year := intParam(validator, "year", r.URL.Query().Get("year"))
	if year != 0 && (year < evaluations.MinYear || year > evaluations.MaxYear) {
		validator.Add("year", "must be between 2000 and 2100")
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	dashboard, err := h.Service.EmployeeDashboard(r.Context(), employeeID, year)
	if err != nil {
		writeError(w, r, err, "dashboard_failed")
		return
	}
	api.Success(w, dashboard, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMonthlyPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	body, ev, err := h.Service.MonthlyPDF(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		writeError(w, r, err, "monthly_pdf_failed")
		return
	}
	if user.RoleName == auth.RoleEmployee && ev.EmployeeID != user.EmployeeID {
		writeError(w, r, evaluations.ErrEvaluationNotFound, "monthly_pdf_failed")
		return
	}
	api.Binary(w, "application/pdf", "evaluacion-"+ev.ID+".pdf", body)
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	if user.RoleName == auth.RoleEmployee {
		api.Fail(w, http.StatusForbidden, "forbidden", "evaluator role required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	runs, total, err := h.Service.JobRuns(r.Context(), strings.TrimSpace(r.URL.Query().Get("jobType")), page.Limit, page.Offset)
	if err != nil {
		writeError(w, r, err, "job_runs_failed")
		return
	}
	shared.SetTotal(w, total)
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

// periodRequest parses the roll-up filter and pins employee callers to their
// own summary.
func (h *Handler) periodRequest(w http.ResponseWriter, r *http.Request) (evaluations.PeriodQuery, string, bool) {
	user, _ := middleware.GetUser(r.Context())
	validator := shared.NewValidator()
	query := parsePeriodQuery(r, validator)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return evaluations.PeriodQuery{}, "", false
	}

	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if user.RoleName == auth.RoleEmployee {
		if user.EmployeeID == "" || (employeeID != "" && employeeID != user.EmployeeID) {
			api.Fail(w, http.StatusForbidden, "forbidden", "employees can only view their own reports", middleware.GetRequestID(r.Context()))
			return evaluations.PeriodQuery{}, "", false
		}
		employeeID = user.EmployeeID
	}
	return query, employeeID, true
}

func parsePeriodQuery(r *http.Request, v *shared.Validator) evaluations.PeriodQuery {
	values := r.URL.Query()
	var query evaluations.PeriodQuery
	if raw := strings.TrimSpace(values.Get("from")); raw != "" {
		query.From, _ = v.Date("from", raw)
	}
	if raw := strings.TrimSpace(values.Get("to")); raw != "" {
		query.To, _ = v.Date("to", raw)
	}
	query.Month = intParam(v, "month", values.Get("month"))
	query.Quarter = intParam(v, "quarter", values.Get("quarter"))
	query.Year = intParam(v, "year", values.Get("year"))
	return query
}

func intParam(v *shared.Validator, field, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(field, "must be a number")
		return 0
	}
	return value
}

func writeError(w http.ResponseWriter, r *http.Request, err error, code string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, evaluations.ErrInvalidPeriod):
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
	case errors.Is(err, evaluations.ErrEvaluationNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", requestID)
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	default:
		slog.Error("report request failed", "err", err, "code", code, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, code, "request failed", requestID)
	}
}

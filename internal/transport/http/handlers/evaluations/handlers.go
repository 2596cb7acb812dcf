package evaluationshandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"salesperf/internal/domain/auth"
	"salesperf/internal/domain/evaluations"
	"salesperf/internal/domain/scoring"
	"salesperf/internal/transport/http/api"
	"salesperf/internal/transport/http/middleware"
	"salesperf/internal/transport/http/shared"
)

type Service interface {
	PreviewMonthly(submission scoring.MonthlySubmission) scoring.MonthlyScore
	SubmitMonthly(ctx context.Context, draft evaluations.MonthlyDraft) (evaluations.MonthlyEvaluation, error)
	ReviseMonthly(ctx context.Context, evaluationID string, submission scoring.MonthlySubmission) (evaluations.MonthlyEvaluation, error)
	GetMonthly(ctx context.Context, evaluationID string) (evaluations.MonthlyEvaluation, error)
	ListMonthly(ctx context.Context, filter evaluations.MonthlyFilter) ([]evaluations.MonthlyEvaluation, int, error)
	DeleteMonthly(ctx context.Context, evaluationIDs []string) (int64, error)
	SubmitWeekly(ctx context.Context, draft evaluations.WeeklyDraft) (evaluations.WeeklyReport, error)
	GetWeekly(ctx context.Context, reportID string) (evaluations.WeeklyReport, error)
	ListWeekly(ctx context.Context, filter evaluations.WeeklyFilter) ([]evaluations.WeeklyReport, int, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)
	write := middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)

	r.Route("/evaluations", func(r chi.Router) {
		r.Route("/monthly", func(r chi.Router) {
			r.With(read).Get("/", h.handleListMonthly)
			r.With(write).Post("/", h.handleCreateMonthly)
			r.With(write).Post("/preview", h.handlePreviewMonthly)
			r.With(write).Post("/delete", h.handleDeleteMonthly)
			r.With(read).Get("/{evaluationID}", h.handleGetMonthly)
			r.With(write).Put("/{evaluationID}", h.handleReviseMonthly)
		})
		r.Route("/weekly", func(r chi.Router) {
			r.With(read).Get("/", h.handleListWeekly)
			r.With(write).Post("/", h.handleCreateWeekly)
			r.With(read).Get("/{reportID}", h.handleGetWeekly)
		})
	})
}

// monthlyView adds the flat per-criterion scores next to the stored record.
type monthlyView struct {
	evaluations.MonthlyEvaluation
	Scores scoring.MonthlyOutput `json:"scores"`
}

func newMonthlyView(ev evaluations.MonthlyEvaluation) monthlyView {
	rounded := ev.Rounded()
	return monthlyView{MonthlyEvaluation: rounded, Scores: ev.Score().Output().Rounded()}
}

type monthlyRequest struct {
	EmployeeID     string `json:"employeeId"`
	EvaluationDate string `json:"evaluationDate"`
	Quarter        int    `json:"quarter"`
	Year           int    `json:"year"`
	scoring.MonthlySubmission
}

func (h *Handler) handlePreviewMonthly(w http.ResponseWriter, r *http.Request) {
	var submission scoring.MonthlySubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	score := h.Service.PreviewMonthly(submission)
	criteria := make([]scoring.CriterionResult, len(score.Criteria))
	for i, result := range score.Criteria {
		result.PonderedScore = scoring.Round2(result.PonderedScore)
		criteria[i] = result
	}
	api.Success(w, map[string]any{
		"criteria":    criteria,
		"subTotal":    scoring.Round2(score.SubTotal),
		"extraPoints": scoring.Round2(score.ExtraPoints),
		"scores":      score.Output().Rounded(),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateMonthly(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload monthlyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("employeeId", payload.EmployeeID, "is required")
	date, _ := validator.Date("evaluationDate", payload.EvaluationDate)
	if payload.Quarter < 0 || payload.Quarter > 4 {
		validator.Add("quarter", "must be between 1 and 4")
	}
	if payload.Year != 0 && (payload.Year < evaluations.MinYear || payload.Year > evaluations.MaxYear) {
		validator.Add("year", "must be between 2000 and 2100")
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	ev, err := h.Service.SubmitMonthly(r.Context(), evaluations.MonthlyDraft{
		EmployeeID:     payload.EmployeeID,
		EvaluatorID:    user.UserID,
		EvaluationDate: date,
		Quarter:        payload.Quarter,
		Year:           payload.Year,
		Submission:     payload.MonthlySubmission,
	})
	if err != nil {
		writeError(w, r, err, "evaluation_create_failed")
		return
	}
	api.Created(w, newMonthlyView(ev), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReviseMonthly(w http.ResponseWriter, r *http.Request) {
	var submission scoring.MonthlySubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	ev, err := h.Service.ReviseMonthly(r.Context(), chi.URLParam(r, "evaluationID"), submission)
	if err != nil {
		writeError(w, r, err, "evaluation_update_failed")
		return
	}
	api.Success(w, newMonthlyView(ev), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetMonthly(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	ev, err := h.Service.GetMonthly(r.Context(), chi.URLParam(r, "evaluationID"))
	if err != nil {
		writeError(w, r, err, "evaluation_fetch_failed")
		return
	}
	if !canSee(user, ev.EmployeeID) {
		writeError(w, r, evaluations.ErrEvaluationNotFound, "evaluation_fetch_failed")
		return
	}
	api.Success(w, newMonthlyView(ev), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListMonthly(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	query := r.URL.Query()

	validator := shared.NewValidator()
	filter := evaluations.MonthlyFilter{
		EmployeeID: strings.TrimSpace(query.Get("employeeId")),
		Year:       intParam(validator, "year", query.Get("year")),
		Quarter:    intParam(validator, "quarter", query.Get("quarter")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	employeeID, ok := scopeEmployee(w, r, user, filter.EmployeeID)
	if !ok {
		return
	}
	filter.EmployeeID = employeeID

	items, total, err := h.Service.ListMonthly(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, "evaluation_list_failed")
		return
	}
	views := make([]monthlyView, 0, len(items))
	for _, ev := range items {
		views = append(views, newMonthlyView(ev))
	}
	shared.SetTotal(w, total)
	api.Success(w, views, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteMonthly(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	deleted, err := h.Service.DeleteMonthly(r.Context(), payload.IDs)
	if err != nil {
		writeError(w, r, err, "evaluation_delete_failed")
		return
	}
	api.Success(w, map[string]int64{"deleted": deleted}, middleware.GetRequestID(r.Context()))
}

type opportunityRequest struct {
	OpportunityID  string         `json:"opportunityId"`
	EvaluationDate string         `json:"evaluationDate"`
	Items          map[string]int `json:"items"`
	PossibleScore  float64        `json:"possibleScore"`
	Comments       string         `json:"comments"`
}

type weeklyRequest struct {
	EmployeeID  string               `json:"employeeId"`
	WeekStart   string               `json:"weekStart"`
	WeekEnd     string               `json:"weekEnd"`
	Notes       string               `json:"notes"`
	Evaluations []opportunityRequest `json:"evaluations"`
}

func (h *Handler) handleCreateWeekly(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload weeklyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("employeeId", payload.EmployeeID, "is required")
	start, _ := validator.Date("weekStart", payload.WeekStart)
	end, _ := validator.Date("weekEnd", payload.WeekEnd)
	validator.DateOrder("weekStart", start, "weekEnd", end)
	if len(payload.Evaluations) == 0 {
		validator.Add("evaluations", "must contain at least one opportunity evaluation")
	}
	drafts := make([]evaluations.OpportunityDraft, 0, len(payload.Evaluations))
	for i, item := range payload.Evaluations {
		field := "evaluations[" + strconv.Itoa(i) + "]"
		draft := evaluations.OpportunityDraft{
			OpportunityID: item.OpportunityID,
			Items:         item.Items,
			PossibleScore: item.PossibleScore,
			Comments:      item.Comments,
		}
		if strings.TrimSpace(item.EvaluationDate) != "" {
			date, ok := validator.Date(field+".evaluationDate", item.EvaluationDate)
			if ok && !start.IsZero() && !end.IsZero() && (date.Before(start) || date.After(end)) {
				validator.Add(field+".evaluationDate", "must fall between weekStart and weekEnd")
			}
			draft.EvaluationDate = date
		}
		raw := scoring.ScoreOpportunity(item.Items)
		if _, err := scoring.ResolvePossibleScore(raw, item.PossibleScore); err != nil {
			validator.Add(field+".possibleScore", fmt.Sprintf("must be 0 or between %g and %g", raw, scoring.MaxOpportunityScore()))
		}
		drafts = append(drafts, draft)
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	report, err := h.Service.SubmitWeekly(r.Context(), evaluations.WeeklyDraft{
		EmployeeID:  payload.EmployeeID,
		EvaluatorID: user.UserID,
		WeekStart:   start,
		WeekEnd:     end,
		Notes:       payload.Notes,
		Evaluations: drafts,
	})
	if err != nil {
		writeError(w, r, err, "weekly_create_failed")
		return
	}
	api.Created(w, report.Rounded(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetWeekly(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	report, err := h.Service.GetWeekly(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		writeError(w, r, err, "weekly_fetch_failed")
		return
	}
	if !canSee(user, report.EmployeeID) {
		writeError(w, r, evaluations.ErrReportNotFound, "weekly_fetch_failed")
		return
	}
	api.Success(w, report.Rounded(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListWeekly(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	query := r.URL.Query()

	validator := shared.NewValidator()
	filter := evaluations.WeeklyFilter{
		EmployeeID: strings.TrimSpace(query.Get("employeeId")),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if raw := query.Get("from"); raw != "" {
		filter.From, _ = validator.Date("from", raw)
	}
	if raw := query.Get("to"); raw != "" {
		filter.To, _ = validator.Date("to", raw)
	}
	validator.DateOrder("from", filter.From, "to", filter.To)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	employeeID, ok := scopeEmployee(w, r, user, filter.EmployeeID)
	if !ok {
		return
	}
	filter.EmployeeID = employeeID

	reports, total, err := h.Service.ListWeekly(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, "weekly_list_failed")
		return
	}
	for i := range reports {
		reports[i] = reports[i].Rounded()
	}
	shared.SetTotal(w, total)
	api.Success(w, reports, middleware.GetRequestID(r.Context()))
}

func canSee(user auth.UserContext, employeeID string) bool {
	return user.RoleName != auth.RoleEmployee || user.EmployeeID == employeeID
}

// scopeEmployee pins employee callers to their own records.
func scopeEmployee(w http.ResponseWriter, r *http.Request, user auth.UserContext, requested string) (string, bool) {
	if user.RoleName != auth.RoleEmployee {
		return requested, true
	}
	if user.EmployeeID == "" || (requested != "" && requested != user.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "employees can only view their own evaluations", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return user.EmployeeID, true
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
	case errors.Is(err, evaluations.ErrEvaluationNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", requestID)
	case errors.Is(err, evaluations.ErrReportNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "weekly report not found", requestID)
	case errors.Is(err, evaluations.ErrDuplicateEvaluation), errors.Is(err, evaluations.ErrDuplicateReport):
		api.Fail(w, http.StatusConflict, "duplicate", err.Error(), requestID)
	case errors.Is(err, evaluations.ErrInvalidPeriod), errors.Is(err, evaluations.ErrInvalidEvaluation):
		api.Fail(w, http.StatusBadRequest, "invalid_evaluation", err.Error(), requestID)
	case errors.Is(err, evaluations.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	default:
		slog.Error("evaluation request failed", "err", err, "code", code, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, code, "request failed", requestID)
	}
}

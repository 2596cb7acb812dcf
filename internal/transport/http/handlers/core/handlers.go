package corehandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"salesperf/internal/domain/auth"
	"salesperf/internal/domain/core"
	"salesperf/internal/transport/http/api"
	"salesperf/internal/transport/http/middleware"
	"salesperf/internal/transport/http/shared"
)

type Service interface {
	ListEmployees(ctx context.Context, status string, limit, offset int) ([]core.Employee, int, error)
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
	CreateEmployee(ctx context.Context, emp core.Employee) (core.Employee, error)
	UpdateEmployee(ctx context.Context, employeeID string, emp core.Employee) (core.Employee, error)
	ListOpportunities(ctx context.Context, employeeID string, limit, offset int) ([]core.Opportunity, int, error)
	GetOpportunity(ctx context.Context, opportunityID string) (core.Opportunity, error)
	CreateOpportunity(ctx context.Context, opp core.Opportunity) (core.Opportunity, error)
	UpdateOpportunityStage(ctx context.Context, opportunityID, stage string) (core.Opportunity, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermEmployeesRead, h.Perms)).Get("/", h.handleGetEmployee)
			r.With(middleware.RequirePermission(auth.PermEmployeesWrite, h.Perms)).Put("/", h.handleUpdateEmployee)
		})
	})
	r.Route("/opportunities", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermOpportunitiesRead, h.Perms)).Get("/", h.handleListOpportunities)
		r.With(middleware.RequirePermission(auth.PermOpportunitiesWrite, h.Perms)).Post("/", h.handleCreateOpportunity)
		r.Route("/{opportunityID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(auth.PermOpportunitiesRead, h.Perms)).Get("/", h.handleGetOpportunity)
			r.With(middleware.RequirePermission(auth.PermOpportunitiesWrite, h.Perms)).Put("/stage", h.handleUpdateStage)
		})
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var employee *core.Employee
	if user.EmployeeID != "" {
		emp, err := h.Service.GetEmployee(r.Context(), user.EmployeeID)
		if err == nil {
			employee = &emp
		} else if !errors.Is(err, core.ErrEmployeeNotFound) {
			slog.Warn("me employee lookup failed", "err", err, "userId", user.UserID)
		}
	}

	api.Success(w, map[string]any{
		"user": map[string]string{
			"id":         user.UserID,
			"roleId":     user.RoleID,
			"role":       user.RoleName,
			"employeeId": user.EmployeeID,
		},
		"employee": employee,
	}, middleware.GetRequestID(r.Context()))
}

type employeeRequest struct {
	EmployeeNumber string `json:"employeeNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Position       string `json:"position"`
	Status         string `json:"status"`
}

func (p employeeRequest) validate(v *shared.Validator) {
	v.Required("firstName", p.FirstName, "is required")
	v.Required("lastName", p.LastName, "is required")
	v.Required("email", p.Email, "is required")
	if email := strings.TrimSpace(p.Email); email != "" && !strings.Contains(email, "@") {
		v.Add("email", "must be a valid email address")
	}
	v.Enum("status", p.Status, core.EmployeeStatuses, "must be active or inactive")
}

func (p employeeRequest) employee() core.Employee {
	return core.Employee{
		EmployeeNumber: p.EmployeeNumber,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Position:       strings.TrimSpace(p.Position),
		Status:         strings.ToLower(strings.TrimSpace(p.Status)),
	}
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))

	employees, total, err := h.Service.ListEmployees(r.Context(), status, page.Limit, page.Offset)
	if err != nil {
		slog.Error("employee list failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	for i := range employees {
		core.FilterEmployeeFields(&employees[i], user)
	}
	shared.SetTotal(w, total)
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeCoreError(w, r, err, "employee_fetch_failed")
		return
	}
	core.FilterEmployeeFields(&emp, user)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	payload.validate(validator)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	emp, err := h.Service.CreateEmployee(r.Context(), payload.employee())
	if err != nil {
		writeCoreError(w, r, err, "employee_create_failed")
		return
	}
	api.Created(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	payload.validate(validator)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	emp, err := h.Service.UpdateEmployee(r.Context(), chi.URLParam(r, "employeeID"), payload.employee())
	if err != nil {
		writeCoreError(w, r, err, "employee_update_failed")
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

type opportunityRequest struct {
	EmployeeID string  `json:"employeeId"`
	Name       string  `json:"name"`
	ClientName string  `json:"clientName"`
	Stage      string  `json:"stage"`
	Amount     float64 `json:"amount"`
}

func (h *Handler) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	if user.RoleName == auth.RoleEmployee {
		if employeeID != "" && employeeID != user.EmployeeID {
			api.Fail(w, http.StatusForbidden, "forbidden", "employees can only view their own opportunities", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = user.EmployeeID
	}

	opportunities, total, err := h.Service.ListOpportunities(r.Context(), employeeID, page.Limit, page.Offset)
	if err != nil {
		slog.Error("opportunity list failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "opportunity_list_failed", "failed to list opportunities", middleware.GetRequestID(r.Context()))
		return
	}
	shared.SetTotal(w, total)
	api.Success(w, opportunities, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetOpportunity(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	opp, err := h.Service.GetOpportunity(r.Context(), chi.URLParam(r, "opportunityID"))
	if err != nil {
		writeCoreError(w, r, err, "opportunity_fetch_failed")
		return
	}
	if user.RoleName == auth.RoleEmployee && opp.EmployeeID != user.EmployeeID {
		api.Fail(w, http.StatusNotFound, "not_found", "opportunity not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, opp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var payload opportunityRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.Stage = strings.ToLower(strings.TrimSpace(payload.Stage))
	validator := shared.NewValidator()
	validator.Required("employeeId", payload.EmployeeID, "is required")
	validator.Required("name", payload.Name, "is required")
	validator.Enum("stage", payload.Stage, core.OpportunityStages, "must be a known stage")
	if payload.Amount < 0 {
		validator.Add("amount", "must not be negative")
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	opp, err := h.Service.CreateOpportunity(r.Context(), core.Opportunity{
		EmployeeID: strings.TrimSpace(payload.EmployeeID),
		Name:       payload.Name,
		ClientName: strings.TrimSpace(payload.ClientName),
		Stage:      payload.Stage,
		Amount:     payload.Amount,
	})
	if err != nil {
		writeCoreError(w, r, err, "opportunity_create_failed")
		return
	}
	api.Created(w, opp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateStage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Stage string `json:"stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	stage := strings.ToLower(strings.TrimSpace(payload.Stage))
	validator := shared.NewValidator()
	validator.Required("stage", stage, "is required")
	validator.Enum("stage", stage, core.OpportunityStages, "must be a known stage")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	opp, err := h.Service.UpdateOpportunityStage(r.Context(), chi.URLParam(r, "opportunityID"), stage)
	if err != nil {
		writeCoreError(w, r, err, "opportunity_update_failed")
		return
	}
	api.Success(w, opp, middleware.GetRequestID(r.Context()))
}

func writeCoreError(w http.ResponseWriter, r *http.Request, err error, code string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, core.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, core.ErrOpportunityNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "opportunity not found", requestID)
	case errors.Is(err, core.ErrDuplicateEmployee):
		api.Fail(w, http.StatusConflict, "duplicate_employee", "employee email or number already exists", requestID)
	default:
		slog.Error("core request failed", "err", err, "code", code, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, code, "request failed", requestID)
	}
}

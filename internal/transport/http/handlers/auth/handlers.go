package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"salesperf/internal/domain/auth"
	"salesperf/internal/transport/http/api"
	"salesperf/internal/transport/http/middleware"
	"salesperf/internal/transport/http/shared"
)

const minPasswordLength = 8

type Service interface {
	Login(ctx context.Context, email, password string) (auth.Session, error)
	CreateUser(ctx context.Context, email, password, role, employeeID string) (string, error)
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.With(middleware.RequirePermission(auth.PermUsersWrite, h.Service)).Post("/users", h.handleCreateUser)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeId"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if strings.TrimSpace(payload.Email) == "" || payload.Password == "" {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	session, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
			return
		}
		slog.Error("login failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"token":     session.AccessToken,
		"expiresAt": session.ExpiresAt,
		"user": map[string]string{
			"id":         session.User.UserID,
			"role":       session.User.RoleName,
			"employeeId": session.User.EmployeeID,
		},
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	payload.Role = strings.ToLower(strings.TrimSpace(payload.Role))
	validator := shared.NewValidator()
	validator.Required("email", payload.Email, "is required")
	if len(payload.Password) < minPasswordLength {
		validator.Add("password", "must be at least 8 characters")
	}
	validator.Required("role", payload.Role, "is required")
	validator.Enum("role", payload.Role, []string{auth.RoleEvaluator, auth.RoleEmployee}, "must be evaluator or employee")
	if payload.Role == auth.RoleEmployee {
		validator.Required("employeeId", payload.EmployeeID, "is required for employee logins")
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Service.CreateUser(r.Context(), payload.Email, payload.Password, payload.Role, strings.TrimSpace(payload.EmployeeID))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			api.Fail(w, http.StatusConflict, "email_taken", "email already registered", middleware.GetRequestID(r.Context()))
		case errors.Is(err, auth.ErrUnknownRole):
			api.Fail(w, http.StatusBadRequest, "invalid_role", "unknown role", middleware.GetRequestID(r.Context()))
		default:
			slog.Error("user create failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
			api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

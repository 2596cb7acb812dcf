package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"salesperf/internal/domain/auth"
)

type staticPermissions map[string]bool

func (s staticPermissions) HasPermission(_ context.Context, roleID, permission string) (bool, error) {
	if roleID == "broken" {
		return false, errors.New("db down")
	}
	return s[roleID+":"+permission], nil
}

func TestRequirePermission(t *testing.T) {
	store := staticPermissions{"r-eval:" + auth.PermEvaluationsWrite: true}
	handler := RequirePermission(auth.PermEvaluationsWrite, store)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name string
		user *auth.UserContext
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"granted", &auth.UserContext{UserID: "u1", RoleID: "r-eval"}, http.StatusNoContent},
		{"denied", &auth.UserContext{UserID: "u2", RoleID: "r-emp"}, http.StatusForbidden},
		{"store error", &auth.UserContext{UserID: "u3", RoleID: "broken"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if tc.user != nil {
			req = req.WithContext(WithUser(req.Context(), *tc.user))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

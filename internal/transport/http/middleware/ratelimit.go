package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"salesperf/internal/transport/http/api"
)

const defaultMaxKeys = 10000

type window struct {
	count int
	reset time.Time
}

// limiter is a fixed-window counter keyed per caller.
type limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	keyOf   func(*http.Request) string
	maxKeys int
	windows map[string]*window
}

func newLimiter(limit int, period time.Duration, keyOf func(*http.Request) string) *limiter {
	return &limiter{
		limit:   limit,
		period:  period,
		keyOf:   keyOf,
		maxKeys: defaultMaxKeys,
		windows: map[string]*window{},
	}
}

// take counts one request for key and returns the quota left, the time until
// the window resets and whether the request fits.
func (l *limiter) take(key string, now time.Time) (int, time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) >= l.maxKeys {
		for k, w := range l.windows {
			if now.After(w.reset) {
				delete(l.windows, k)
			}
		}
	}
	w, ok := l.windows[key]
	if !ok || now.After(w.reset) {
		w = &window{reset: now.Add(l.period)}
		l.windows[key] = w
	}
	w.count++
	return l.limit - w.count, w.reset.Sub(now), w.count <= l.limit
}

func (l *limiter) admit(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.keyOf(r)
	if key == "" {
		key = clientIP(r)
	}
	remaining, resetIn, ok := l.take(key, time.Now())
	resetSec := int((resetIn + time.Second - 1) / time.Second)

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	h.Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if ok {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit caps requests per signed-in user, falling back to the client IP.
func RateLimit(limit int, period time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(limit, period, userOrIP)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.admit(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

type routeClass int

const (
	routeOpen routeClass = iota
	routeLogin
	routeScoring
)

// SensitiveMutationRateLimit puts tighter quotas on logins, counted per IP
// and per email, and on writes that score, revise or archive evaluations.
func SensitiveMutationRateLimit(base int, period time.Duration) func(http.Handler) http.Handler {
	loginByIP := newLimiter(max(base/4, 1), period, clientIP)
	loginByEmail := newLimiter(max(base/4, 1), period, loginEmail)
	writes := newLimiter(max(base/2, 1), period, userOrIP)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classifyRoute(r) {
			case routeLogin:
				if !loginByIP.admit(w, r) || !loginByEmail.admit(w, r) {
					return
				}
			case routeScoring:
				if !writes.admit(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func classifyRoute(r *http.Request) routeClass {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return routeOpen
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")
	switch {
	case path == "/auth/login":
		return routeLogin
	case path == "/users", path == "/reports/accumulated/archive", strings.HasPrefix(path, "/evaluations/"):
		return routeScoring
	}
	return routeOpen
}

func userOrIP(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return clientIP(r)
}

func clientIP(r *http.Request) string {
	if fwd, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(fwd) != "" {
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// loginEmail peeks at a JSON login body and restores it for the handler.
func loginEmail(r *http.Request) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if email := strings.ToLower(strings.TrimSpace(body.Email)); email != "" {
		return "email:" + email
	}
	return ""
}

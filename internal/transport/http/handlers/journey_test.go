package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"salesperf/internal/app/server"
	"salesperf/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	return config.Config{
		DatabaseURL:           dbURL,
		JWTSecret:             "test-secret",
		TokenTTL:              time.Hour,
		Environment:           "test",
		RunMigrations:         true,
		MigrationsDir:         "../../../../migrations",
		RunSeed:               true,
		SeedEvaluatorEmail:    "evaluator@test.local",
		SeedEvaluatorPassword: "ChangeMe123!",
		MaxBodyBytes:          1048576,
		RateLimitPerMinute:    1000,
		KafkaTopic:            "sales-evaluations",
		ReportsDir:            t.TempDir(),
		MetricsEnabled:        true,
	}
}

func TestEvaluationJourney(t *testing.T) {
	cfg := testConfig(t)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	token := login(t, client, ts.URL, cfg.SeedEvaluatorEmail, cfg.SeedEvaluatorPassword)

	suffix := time.Now().UnixNano()
	employeeID := createEmployee(t, client, ts.URL, token, fmt.Sprintf("journey-%d@example.com", suffix))
	otherID := createEmployee(t, client, ts.URL, token, fmt.Sprintf("journey-other-%d@example.com", suffix))

	resp := postJSON(t, client, ts.URL+"/api/v1/evaluations/monthly", token, map[string]any{
		"employeeId":                     employeeID,
		"evaluationDate":                 "2025-05-15",
		"quarter":                        2,
		"year":                           2025,
		"salesGoalObjective":             100,
		"salesGoalAchieved":              80,
		"activityObjective":              "50",
		"activityAchieved":               "50",
		"opportunityCreationObjective":   10,
		"opportunityCreationAchieved":    12,
		"opportunityConversionObjective": 0,
		"opportunityConversionAchieved":  5,
		"crmFollowUpObjective":           20,
		"crmFollowUpAchieved":            10,
		"extraPoints":                    nil,
	}, http.StatusCreated)
	var monthly struct {
		ID     string `json:"id"`
		Scores struct {
			TotalScore float64 `json:"totalScore"`
			Rubrica    string  `json:"rubrica"`
		} `json:"scores"`
	}
	decode(t, resp.Data, &monthly)
	if monthly.ID == "" || monthly.Scores.Rubrica == "" {
		t.Fatalf("unexpected monthly evaluation %+v", monthly)
	}

	// Same employee, evaluator, date and period.
	postJSON(t, client, ts.URL+"/api/v1/evaluations/monthly", token, map[string]any{
		"employeeId":     employeeID,
		"evaluationDate": "2025-05-15",
		"quarter":        2,
		"year":           2025,
	}, http.StatusConflict)

	items := map[string]int{"needsDiscovery": 2, "valueProposition": 1, "closingAttempt": 2}
	resp = postJSON(t, client, ts.URL+"/api/v1/evaluations/weekly", token, map[string]any{
		"employeeId": employeeID,
		"weekStart":  "2025-05-12",
		"weekEnd":    "2025-05-16",
		"evaluations": []map[string]any{
			{"evaluationDate": "2025-05-13", "items": items},
			{"evaluationDate": "2025-05-14", "items": map[string]int{"needsDiscovery": 2}},
		},
	}, http.StatusCreated)
	var weekly struct {
		AverageScore float64 `json:"averageScore"`
	}
	decode(t, resp.Data, &weekly)
	if weekly.AverageScore != 3.5 {
		t.Fatalf("expected weekly average 3.5, got %v", weekly.AverageScore)
	}

	getJSON(t, client, ts.URL+"/api/v1/evaluations/monthly/not-a-uuid", token, http.StatusNotFound)
	getJSON(t, client, ts.URL+"/api/v1/evaluations/weekly/not-a-uuid", token, http.StatusNotFound)
	postJSON(t, client, ts.URL+"/api/v1/evaluations/weekly", token, map[string]any{
		"employeeId": employeeID,
		"weekStart":  "2025-05-19",
		"weekEnd":    "2025-05-23",
		"evaluations": []map[string]any{
			{"opportunityId": "00000000-0000-0000-0000-000000000000", "items": items},
		},
	}, http.StatusBadRequest)

	resp = getJSON(t, client, ts.URL+"/api/v1/reports/accumulated?quarter=2&year=2025&employeeId="+employeeID, token, http.StatusOK)
	var report struct {
		Trimestre int `json:"trimestre"`
		Summaries []struct {
			Porcentaje float64 `json:"porcentaje"`
			Rubrica    string  `json:"rubrica"`
		} `json:"summaries"`
	}
	decode(t, resp.Data, &report)
	if report.Trimestre != 2 || len(report.Summaries) != 1 || report.Summaries[0].Rubrica == "" {
		t.Fatalf("unexpected accumulated report %+v", report)
	}

	postJSON(t, client, ts.URL+"/api/v1/users", token, map[string]any{
		"email":      fmt.Sprintf("seller-%d@example.com", suffix),
		"password":   "Seller123!",
		"role":       "employee",
		"employeeId": employeeID,
	}, http.StatusCreated)
	sellerToken := login(t, client, ts.URL, fmt.Sprintf("seller-%d@example.com", suffix), "Seller123!")

	getJSON(t, client, ts.URL+"/api/v1/evaluations/monthly/"+monthly.ID, sellerToken, http.StatusOK)
	getJSON(t, client, ts.URL+"/api/v1/reports/employees/"+employeeID+"/dashboard?year=2025", sellerToken, http.StatusOK)
	getJSON(t, client, ts.URL+"/api/v1/reports/employees/"+otherID+"/dashboard", sellerToken, http.StatusForbidden)
	postJSON(t, client, ts.URL+"/api/v1/evaluations/monthly", sellerToken, map[string]any{"employeeId": employeeID}, http.StatusForbidden)

	postJSON(t, client, ts.URL+"/api/v1/reports/accumulated/archive?quarter=2&year=2025", token, nil, http.StatusAccepted)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	cfg := testConfig(t)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	getJSON(t, ts.Client(), ts.URL+"/api/v1/evaluations/monthly", "", http.StatusUnauthorized)
	getJSON(t, ts.Client(), ts.URL+"/api/v1/reports/accumulated", "", http.StatusUnauthorized)

	resp, err := ts.Client().Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("readyz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ready, got %d", resp.StatusCode)
	}
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	var payload map[string]any
	decode(t, resp.Data, &payload)
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func createEmployee(t *testing.T, client *http.Client, baseURL, token, email string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/employees", token, map[string]any{
		"firstName": "Journey",
		"lastName":  "Tester",
		"email":     email,
		"position":  "Account Executive",
		"status":    "active",
	}, http.StatusCreated)
	var payload map[string]any
	decode(t, resp.Data, &payload)
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("expected employee id")
	}
	return id
}

func decode(t *testing.T, raw json.RawMessage, out any) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(t, client, req, token, want)
}

func getJSON(t *testing.T, client *http.Client, url, token string, want int) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	return do(t, client, req, token, want)
}

func do(t *testing.T, client *http.Client, req *http.Request, token string, want int) envelope {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", req.Method, req.URL.Path, want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

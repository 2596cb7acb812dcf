package cli

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"salesperf/internal/domain/scoring"
)

type monthlyRecord struct {
	Employee   string
	Period     string
	Submission scoring.MonthlySubmission
}

// readRecords loads a YAML or JSON document holding either a list of records
// or a mapping with the list under key.
func readRecords(path, key string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if wrapped, ok := doc.(map[string]any); ok {
		doc = wrapped[key]
	}
	list, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected a list of records or a %q list", path, key)
	}

	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: record %d is not a mapping", path, i+1)
		}
		out = append(out, record)
	}
	return out, nil
}

func readMonthly(path string) ([]monthlyRecord, error) {
	records, err := readRecords(path, "evaluations")
	if err != nil {
		return nil, err
	}
	out := make([]monthlyRecord, 0, len(records))
	for i, record := range records {
		employee := stringField(record, "employee")
		if employee == "" {
			return nil, fmt.Errorf("%s: record %d has no employee", path, i+1)
		}
		out = append(out, monthlyRecord{
			Employee:   employee,
			Period:     stringField(record, "period"),
			Submission: scoring.SubmissionFromRaw(record),
		})
	}
	return out, nil
}

// readWeekly turns opportunity evaluations into roll-up input. A record may
// carry its rubric items or a precomputed scoreRaw.
func readWeekly(path string) ([]scoring.WeeklyScore, error) {
	records, err := readRecords(path, "opportunities")
	if err != nil {
		return nil, err
	}
	out := make([]scoring.WeeklyScore, 0, len(records))
	for i, record := range records {
		employee := stringField(record, "employee")
		if employee == "" {
			return nil, fmt.Errorf("%s: record %d has no employee", path, i+1)
		}

		score := scoring.ParseMetric(record["scoreRaw"])
		if items, ok := record["items"].(map[string]any); ok {
			score = scoring.ScoreOpportunity(itemValues(items))
		}
		possible, err := scoring.ResolvePossibleScore(score, scoring.ParseMetric(record["possibleScore"]))
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: possibleScore must be 0 or between %g and %g", path, i+1, score, scoring.MaxOpportunityScore())
		}
		out = append(out, scoring.WeeklyScore{
			EmployeeID: employee,
			Employee: scoring.EmployeeRef{
				ID:        employee,
				FirstName: stringField(record, "firstName"),
				LastName:  stringField(record, "lastName"),
			},
			ScoreRaw:      score,
			PossibleScore: possible,
		})
	}
	return out, nil
}

func itemValues(raw map[string]any) map[string]int {
	out := make(map[string]int, len(raw))
	for key, value := range raw {
		out[key] = int(math.Round(scoring.ParseMetric(value)))
	}
	return out
}

func stringField(record map[string]any, key string) string {
	switch value := record[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

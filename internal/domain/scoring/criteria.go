package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type CriterionID string

const (
	CriterionSalesGoal             CriterionID = "salesGoal"
	CriterionActivity              CriterionID = "activity"
	CriterionOpportunityCreation   CriterionID = "opportunityCreation"
	CriterionOpportunityConversion CriterionID = "opportunityConversion"
	CriterionCRMFollowUp           CriterionID = "crmFollowUp"
)

type UnitKind string

const (
	UnitCurrency UnitKind = "currency"
	UnitCount    UnitKind = "count"
	UnitPercent  UnitKind = "percent"
)

// Criterion describes one weighted monthly KPI.
type Criterion struct {
	ID     CriterionID `json:"id"`
	Label  string      `json:"label"`
	Weight float64     `json:"weight"`
	Unit   UnitKind    `json:"unit"`
}

type Criteria []Criterion

// DefaultCriteria returns the monthly rubric currently in force.
func DefaultCriteria() Criteria {
	return Criteria{
		{ID: CriterionSalesGoal, Label: "Meta de ventas", Weight: 30, Unit: UnitCurrency},
		{ID: CriterionActivity, Label: "Actividad comercial", Weight: 20, Unit: UnitCount},
		{ID: CriterionOpportunityCreation, Label: "Creación de oportunidades", Weight: 15, Unit: UnitCount},
		{ID: CriterionOpportunityConversion, Label: "Conversión de oportunidades", Weight: 20, Unit: UnitPercent},
		{ID: CriterionCRMFollowUp, Label: "Seguimiento en CRM", Weight: 15, Unit: UnitPercent},
	}
}

func KnownCriterion(id CriterionID) bool {
	for _, c := range DefaultCriteria() {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (c Criteria) TotalWeight() float64 {
	total := 0.0
	for _, criterion := range c {
		total += criterion.Weight
	}
	return total
}

func (c Criteria) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("no scoring criteria configured")
	}
	seen := map[CriterionID]bool{}
	for _, criterion := range c {
		if !KnownCriterion(criterion.ID) {
			return fmt.Errorf("unknown criterion %q", criterion.ID)
		}
		if seen[criterion.ID] {
			return fmt.Errorf("duplicate criterion %q", criterion.ID)
		}
		seen[criterion.ID] = true
		if !(criterion.Weight > 0) || math.IsInf(criterion.Weight, 0) {
			return fmt.Errorf("criterion %q weight must be a positive finite number", criterion.ID)
		}
	}
	return nil
}

// WithWeights returns a copy of c with the given weights replaced.
func (c Criteria) WithWeights(overrides map[CriterionID]float64) (Criteria, error) {
	out := make(Criteria, len(c))
	copy(out, c)
	for id, weight := range overrides {
		found := false
		for i := range out {
			if out[i].ID == id {
				out[i].Weight = weight
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown criterion %q", id)
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseWeights reads overrides written as "salesGoal=30,activity=20".
func ParseWeights(raw string) (map[CriterionID]float64, error) {
	out := map[CriterionID]float64{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid weight entry %q", part)
		}
		id := CriterionID(strings.TrimSpace(key))
		if !KnownCriterion(id) {
			return nil, fmt.Errorf("unknown criterion %q", id)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight for %q: %w", id, err)
		}
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return nil, fmt.Errorf("invalid weight for %q: %s", id, value)
		}
		out[id] = weight
	}
	return out, nil
}

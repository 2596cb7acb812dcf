package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseMetric coerces a raw submitted value into a clean non-negative float.
// Anything that cannot be read as a number becomes 0.
func ParseMetric(raw any) float64 {
	var value float64
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int32:
		value = float64(v)
	case int64:
		value = float64(v)
	case uint:
		value = float64(v)
	case uint64:
		value = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		value = parsed
	case Metric:
		value = float64(v)
	case string:
		value = parseMetricString(v)
	default:
		return 0
	}
	return nonNegative(value)
}

var metricReplacer = strings.NewReplacer(
	"$", "",
	"€", "",
	",", "",
	"%", "",
	" ", "",
	"\u00a0", "",
	"\t", "",
)

func parseMetricString(raw string) float64 {
	cleaned := metricReplacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// Metric is a float that decodes from JSON numbers or formatted strings
// ("$1,234.56", "45%"). Decoding never fails.
type Metric float64

func (m *Metric) UnmarshalJSON(data []byte) error {
	var raw any
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		*m = 0
		return nil
	}
	*m = Metric(ParseMetric(raw))
	return nil
}

// MonthlySubmission mirrors the monthly KPI form.
type MonthlySubmission struct {
	SalesGoalObjective             Metric `json:"salesGoalObjective"`
	SalesGoalAchieved              Metric `json:"salesGoalAchieved"`
	ActivityObjective              Metric `json:"activityObjective"`
	ActivityAchieved               Metric `json:"activityAchieved"`
	OpportunityCreationObjective   Metric `json:"opportunityCreationObjective"`
	OpportunityCreationAchieved    Metric `json:"opportunityCreationAchieved"`
	OpportunityConversionObjective Metric `json:"opportunityConversionObjective"`
	OpportunityConversionAchieved  Metric `json:"opportunityConversionAchieved"`
	CRMFollowUpObjective           Metric `json:"crmFollowUpObjective"`
	CRMFollowUpAchieved            Metric `json:"crmFollowUpAchieved"`
	ExtraPoints                    Metric `json:"extraPoints"`
}

func (s MonthlySubmission) Input() MonthlyInput {
	return MonthlyInput{
		Metrics: map[CriterionID]Pair{
			CriterionSalesGoal:             {Objective: float64(s.SalesGoalObjective), Achieved: float64(s.SalesGoalAchieved)},
			CriterionActivity:              {Objective: float64(s.ActivityObjective), Achieved: float64(s.ActivityAchieved)},
			CriterionOpportunityCreation:   {Objective: float64(s.OpportunityCreationObjective), Achieved: float64(s.OpportunityCreationAchieved)},
			CriterionOpportunityConversion: {Objective: float64(s.OpportunityConversionObjective), Achieved: float64(s.OpportunityConversionAchieved)},
			CriterionCRMFollowUp:           {Objective: float64(s.CRMFollowUpObjective), Achieved: float64(s.CRMFollowUpAchieved)},
		},
		ExtraPoints: float64(s.ExtraPoints),
	}
}

// SubmissionFromRaw builds a submission from loosely typed values such as a
// decoded YAML document. Keys follow the JSON field names.
func SubmissionFromRaw(raw map[string]any) MonthlySubmission {
	get := func(key string) Metric { return Metric(ParseMetric(raw[key])) }
	return MonthlySubmission{
		SalesGoalObjective:             get("salesGoalObjective"),
		SalesGoalAchieved:              get("salesGoalAchieved"),
		ActivityObjective:              get("activityObjective"),
		ActivityAchieved:               get("activityAchieved"),
		OpportunityCreationObjective:   get("opportunityCreationObjective"),
		OpportunityCreationAchieved:    get("opportunityCreationAchieved"),
		OpportunityConversionObjective: get("opportunityConversionObjective"),
		OpportunityConversionAchieved:  get("opportunityConversionAchieved"),
		CRMFollowUpObjective:           get("crmFollowUpObjective"),
		CRMFollowUpAchieved:            get("crmFollowUpAchieved"),
		ExtraPoints:                    get("extraPoints"),
	}
}

type MonthlyOutput struct {
	SalesGoalPonderedScore  float64 `json:"salesGoalPonderedScore"`
	ActivityPonderedScore   float64 `json:"activityPonderedScore"`
	CreationPonderedScore   float64 `json:"creationPonderedScore"`
	ConversionPonderedScore float64 `json:"conversionPonderedScore"`
	CRMPonderedScore        float64 `json:"crmPonderedScore"`
	TotalScore              float64 `json:"totalScore"`
	Rubrica                 string  `json:"rubrica"`
}

func (m MonthlyScore) Output() MonthlyOutput {
	return MonthlyOutput{
		SalesGoalPonderedScore:  m.Pondered(CriterionSalesGoal),
		ActivityPonderedScore:   m.Pondered(CriterionActivity),
		CreationPonderedScore:   m.Pondered(CriterionOpportunityCreation),
		ConversionPonderedScore: m.Pondered(CriterionOpportunityConversion),
		CRMPonderedScore:        m.Pondered(CriterionCRMFollowUp),
		TotalScore:              m.TotalScore,
		Rubrica:                 m.Rubrica,
	}
}

// Rounded returns a copy with every score rounded for display.
func (o MonthlyOutput) Rounded() MonthlyOutput {
	o.SalesGoalPonderedScore = Round2(o.SalesGoalPonderedScore)
	o.ActivityPonderedScore = Round2(o.ActivityPonderedScore)
	o.CreationPonderedScore = Round2(o.CreationPonderedScore)
	o.ConversionPonderedScore = Round2(o.ConversionPonderedScore)
	o.CRMPonderedScore = Round2(o.CRMPonderedScore)
	o.TotalScore = Round2(o.TotalScore)
	return o
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"salesperf/internal/domain/scoring"
)

const (
	envPrefix         = "SCORECARD"
	defaultConfigName = ".scorecard"
)

// Settings is the merged view of flags, SCORECARD_* variables and the
// config file.
type Settings struct {
	Weights map[scoring.CriterionID]float64
	Ledger  string
}

func loadSettings(v *viper.Viper, configFile string) (Settings, error) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetDefault("ledger", "")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	weights, err := parseWeights(v.Get("weights"))
	if err != nil {
		return Settings{}, fmt.Errorf("weights: %w", err)
	}
	return Settings{
		Weights: weights,
		Ledger:  strings.TrimSpace(v.GetString("ledger")),
	}, nil
}

// parseWeights accepts either the config file mapping or the
// "salesGoal=30,activity=20" form used in SCORECARD_WEIGHTS. Viper folds map
// keys to lower case, so ids are matched case-insensitively.
func parseWeights(raw any) (map[scoring.CriterionID]float64, error) {
	switch value := raw.(type) {
	case nil:
		return map[scoring.CriterionID]float64{}, nil
	case string:
		return scoring.ParseWeights(value)
	case map[string]any:
		out := make(map[scoring.CriterionID]float64, len(value))
		for key, weight := range value {
			id, ok := criterionID(key)
			if !ok {
				return nil, fmt.Errorf("unknown criterion %q", key)
			}
			out[id] = scoring.ParseMetric(weight)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported weights value %T", raw)
	}
}

func criterionID(key string) (scoring.CriterionID, bool) {
	for _, criterion := range scoring.DefaultCriteria() {
		if strings.EqualFold(string(criterion.ID), strings.TrimSpace(key)) {
			return criterion.ID, true
		}
	}
	return "", false
}

func (s Settings) Engine() (*scoring.Engine, error) {
	criteria, err := scoring.DefaultCriteria().WithWeights(s.Weights)
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(criteria)
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"salesperf/internal/domain/scoring"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	JWTSecret             string
	TokenTTL              time.Duration
	Environment           string
	LogLevel              string
	LogFormat             string
	RunMigrations         bool
	MigrationsDir         string
	RunSeed               bool
	SeedEvaluatorEmail    string
	SeedEvaluatorPassword string
	MaxBodyBytes          int64
	RateLimitPerMinute    int
	CORSAllowedOrigins    []string
	ScoringWeights        string
	KafkaBrokers          []string
	KafkaTopic            string
	ReportsDir            string
	ReportArchiveInterval time.Duration
	MetricsEnabled        bool
}

func Load() Config {
	return Config{
		Addr:                  getEnv("APP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		TokenTTL:              getEnvDuration("TOKEN_TTL", 8*time.Hour),
		Environment:           getEnv("APP_ENV", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "json"),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", "migrations"),
		RunSeed:               getEnvBool("RUN_SEED", true),
		SeedEvaluatorEmail:    getEnv("SEED_EVALUATOR_EMAIL", ""),
		SeedEvaluatorPassword: getEnv("SEED_EVALUATOR_PASSWORD", ""),
		MaxBodyBytes:          int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute:    getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS"),
		ScoringWeights:        getEnv("SCORING_WEIGHTS", ""),
		KafkaBrokers:          getEnvList("KAFKA_BROKERS"),
		KafkaTopic:            getEnv("KAFKA_TOPIC", "sales-evaluations"),
		ReportsDir:            getEnv("REPORTS_DIR", "storage/reports"),
		ReportArchiveInterval: getEnvDuration("REPORT_ARCHIVE_INTERVAL", 0),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		if c.Environment == "production" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
	}
	if c.Environment == "production" && c.RunSeed && strings.TrimSpace(c.SeedEvaluatorPassword) == "" {
		return fmt.Errorf("SEED_EVALUATOR_PASSWORD must be set or RUN_SEED disabled in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ReportArchiveInterval < 0 {
		return fmt.Errorf("REPORT_ARCHIVE_INTERVAL must not be negative")
	}
	if _, err := c.ScoringCriteria(); err != nil {
		return fmt.Errorf("SCORING_WEIGHTS: %w", err)
	}
	return nil
}

// ScoringCriteria applies SCORING_WEIGHTS overrides to the default rubric.
func (c Config) ScoringCriteria() (scoring.Criteria, error) {
	overrides, err := scoring.ParseWeights(c.ScoringWeights)
	if err != nil {
		return nil, err
	}
	return scoring.DefaultCriteria().WithWeights(overrides)
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/portfolio-advisor/internal/modules/optimization"
	"github.com/joho/godotenv"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Base directory for the SQLite database (always absolute)
	DatabaseDriver string
	DatabaseURL    string // Postgres connection string; ignored for sqlite
	LogLevel       string
	OpenAIAPIKey   string
	OpenAIModel    string
	CORSOrigins    []string
	Optimizer      optimization.Settings
	RiskFreeTTL    time.Duration
	Budget         BudgetConfig
	Port           int
	ExplainPerMin  int
	RetentionDays  int
	DevMode        bool
}

// BudgetConfig holds language model token budgets
type BudgetConfig struct {
	DailyTokens   int64
	MonthlyTokens int64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	defaults := optimization.DefaultSettings()
	cfg := &Config{
		DataDir:        dataDir,
		Port:           getEnvAsInt("PORT", 8001),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		ExplainPerMin:  getEnvAsInt("EXPLAIN_RATE_PER_MINUTE", 10),
		RetentionDays:  getEnvAsInt("USAGE_RETENTION_DAYS", 400),
		RiskFreeTTL:    getEnvAsDuration("RISK_FREE_CACHE_TTL", time.Hour),
		Budget: BudgetConfig{
			DailyTokens:   int64(getEnvAsInt("DAILY_TOKEN_BUDGET", 100000)),
			MonthlyTokens: int64(getEnvAsInt("MONTHLY_TOKEN_BUDGET", 2000000)),
		},
		Optimizer: optimization.Settings{
			MinDataPoints:        getEnvAsInt("MIN_DATA_POINTS", defaults.MinDataPoints),
			PruneThreshold:       getEnvAsFloat("WEIGHT_PRUNE_THRESHOLD", defaults.PruneThreshold),
			MaxSingleAssetWeight: getEnvAsFloat("MAX_SINGLE_ASSET_WEIGHT", defaults.MaxSingleAssetWeight),
			RiskParityIterations: getEnvAsInt("RISK_PARITY_ITERATIONS", defaults.RiskParityIterations),
		},
	}
	cfg.DatabaseURL = normalizePostgresURL(cfg.DatabaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseDriver == DriverSQLite {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// SQLitePath returns the database file inside DataDir
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "advisor.db")
}

// Validate rejects out-of-range values
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver)
	}
	if c.Budget.DailyTokens < 0 || c.Budget.MonthlyTokens < 0 {
		return fmt.Errorf("token budgets must not be negative")
	}
	if c.ExplainPerMin < 0 {
		return fmt.Errorf("EXPLAIN_RATE_PER_MINUTE must not be negative, got %d", c.ExplainPerMin)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("USAGE_RETENTION_DAYS must be at least 1, got %d", c.RetentionDays)
	}
	if c.RiskFreeTTL < 0 {
		return fmt.Errorf("RISK_FREE_CACHE_TTL must not be negative")
	}

	o := c.Optimizer
	if o.MinDataPoints < 2 {
		return fmt.Errorf("MIN_DATA_POINTS must be at least 2, got %d", o.MinDataPoints)
	}
	if o.PruneThreshold < 0 || o.PruneThreshold >= 1 {
		return fmt.Errorf("WEIGHT_PRUNE_THRESHOLD must be in [0, 1), got %v", o.PruneThreshold)
	}
	if o.MaxSingleAssetWeight <= 0 || o.MaxSingleAssetWeight > 1 {
		return fmt.Errorf("MAX_SINGLE_ASSET_WEIGHT must be in (0, 1], got %v", o.MaxSingleAssetWeight)
	}
	if o.RiskParityIterations < 1 {
		return fmt.Errorf("RISK_PARITY_ITERATIONS must be at least 1, got %d", o.RiskParityIterations)
	}
	return nil
}

// normalizePostgresURL strips SQLAlchemy driver suffixes, which pgx cannot parse.
func normalizePostgresURL(url string) string {
	for _, prefix := range []string{"postgresql+asyncpg://", "postgres+asyncpg://"} {
		if strings.HasPrefix(url, prefix) {
			return "postgres://" + strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for storelens-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8470"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Analytics database (read-only role)
	Database DatabaseConfig `yaml:"database"`

	// AI completion endpoint
	AI AIConfig `yaml:"ai"`

	// Insight pipeline limits
	Insights InsightsConfig `yaml:"insights"`
}

// DatabaseConfig holds the analytics database connection configuration.
// The configured role must carry SELECT-only grants; the engine never
// issues writes against this database.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:"storelens_ro"`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:"storelens_analytics"`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`

	// Pool sizing. Modest by design: each request runs at most one query.
	MinConnections int32 `yaml:"min_connections" env:"PGMIN_CONNECTIONS" env-default:"1"`
	MaxConnections int32 `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"5"`

	// StatementTimeoutMs is applied once per physical connection.
	StatementTimeoutMs int `yaml:"statement_timeout_ms" env:"PGSTATEMENT_TIMEOUT_MS" env-default:"5000"`
}

// AIConfig holds completion endpoint configuration.
type AIConfig struct {
	// Provider selects the completion client: "openai" (any
	// OpenAI-compatible endpoint) or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	Endpoint string `yaml:"endpoint" env:"AI_ENDPOINT" env-default:"https://api.openai.com/v1"`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML

	// MaxTokens is the completion token budget.
	MaxTokens int `yaml:"max_tokens" env:"AI_MAX_TOKENS" env-default:"1024"`

	// TimeoutSeconds is the wall-clock bound on one completion call.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"AI_TIMEOUT_SECONDS" env-default:"30"`
}

// InsightsConfig holds the pipeline's row and limit bounds.
type InsightsConfig struct {
	// DefaultRowLimit is appended as LIMIT when the model omits one.
	DefaultRowLimit int `yaml:"default_row_limit" env:"INSIGHTS_DEFAULT_ROW_LIMIT" env-default:"100"`
	// MaxRowLimit clamps any model-supplied LIMIT.
	MaxRowLimit int `yaml:"max_row_limit" env:"INSIGHTS_MAX_ROW_LIMIT" env-default:"1000"`
	// MaxRows truncates any result set past this many rows.
	MaxRows int `yaml:"max_rows" env:"INSIGHTS_MAX_ROWS" env-default:"1000"`
}

// Timeout returns the completion timeout as a duration.
func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads configuration from config.yaml with environment variable
// overrides. When config.yaml does not exist, environment variables and
// defaults alone are used. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Insights.DefaultRowLimit <= 0 {
		return fmt.Errorf("default_row_limit must be positive")
	}
	if c.Insights.MaxRowLimit < c.Insights.DefaultRowLimit {
		return fmt.Errorf("max_row_limit must be >= default_row_limit")
	}
	if c.Insights.MaxRows <= 0 {
		return fmt.Errorf("max_rows must be positive")
	}
	if c.Database.StatementTimeoutMs <= 0 {
		return fmt.Errorf("statement_timeout_ms must be positive")
	}
	switch c.AI.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown ai provider %q", c.AI.Provider)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

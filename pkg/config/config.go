package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"

	"github.com/noel97chan-creator/Bank-statement-extractor/pkg/money"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	Inbox         InboxConfig
	Processing    ProcessingConfig
	Observability ObservabilityConfig
	Log           LogConfig
}

type DatabaseConfig struct {
	// URL is a pgx connection string. Empty disables persistence.
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type InboxConfig struct {
	Dir               string
	MaxUploadSize     int64
	AllowedExtensions []string
	SweepSchedule     string
	IntakeRate        float64
}

type ProcessingConfig struct {
	Workers         int
	DetectPages     int
	RulesFile       string
	DefaultCurrency string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsAddr    string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("DB_MIN_CONNS", 1)),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute),
		},
		Inbox: InboxConfig{
			Dir:               getEnv("INBOX_DIR", "uploads"),
			MaxUploadSize:     int64(getEnvAsInt("MAX_UPLOAD_SIZE", 10<<20)),
			AllowedExtensions: getEnvAsList("ALLOWED_EXTENSIONS", []string{".pdf", ".xlsx"}),
			SweepSchedule:     getEnv("SWEEP_SCHEDULE", "@every 1m"),
			IntakeRate:        getEnvAsFloat("INTAKE_RATE", 2),
		},
		Processing: ProcessingConfig{
			Workers:         getEnvAsInt("WORKERS", 4),
			DetectPages:     getEnvAsInt("DETECT_PAGES", 2),
			RulesFile:       getEnv("RULES_FILE", ""),
			DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", money.SGD)),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsAddr:    getEnv("METRICS_ADDR", ":9090"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Processing.Workers < 1 {
		return errors.New("WORKERS must be at least 1")
	}
	if c.Processing.DetectPages < 1 {
		return errors.New("DETECT_PAGES must be at least 1")
	}
	if c.Inbox.MaxUploadSize <= 0 {
		return errors.New("MAX_UPLOAD_SIZE must be positive")
	}
	if len(c.Inbox.AllowedExtensions) == 0 {
		return errors.New("ALLOWED_EXTENSIONS must not be empty")
	}
	if c.Inbox.IntakeRate <= 0 {
		return errors.New("INTAKE_RATE must be positive")
	}
	if !money.IsKnownCurrency(c.Processing.DefaultCurrency) {
		return fmt.Errorf("DEFAULT_CURRENCY must be an ISO 4217 code, got %q", c.Processing.DefaultCurrency)
	}
	return nil
}

// PersistenceEnabled reports whether a database was configured.
func (c *DatabaseConfig) PersistenceEnabled() bool {
	return c.URL != ""
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to INFO.
func (c *LogConfig) SlogLevel() slog.Level {
	switch c.Level {
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

// NewLogger builds the process logger: text by default, JSON when
// LOG_FORMAT=json.
func (c *LogConfig) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value. Extensions are lower-cased
// and given a leading dot.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, ".") {
			v = "." + v
		}
		out = append(out, v)
	}
	return out
}

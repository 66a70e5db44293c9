package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/invoice-insights/pkg/money"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Analytics     AnalyticsConfig
	Session       SessionConfig
	Storage       StorageConfig
	Observability ObservabilityConfig
	Log           LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	MaxUploadBytes     int64
	AllowedOrigins     []string
	ShutdownTimeout    time.Duration
}

type AnalyticsConfig struct {
	SynonymsFile string       // Optional YAML file extending the header vocabulary
	WeekStart    time.Weekday // First day of weekly buckets
	Currency     string       // ISO-4217 code used in summaries
}

type SessionConfig struct {
	TTL time.Duration
}

// StorageConfig controls the archive of original uploads. An empty
// ArchiveDir disables archiving.
type StorageConfig struct {
	ArchiveDir    string
	SweepSchedule string // cron expression for removing files of expired uploads
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPath    string
}

type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment variables
// take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	weekStart, err := ParseWeekday(getEnv("ANALYTICS_WEEK_START", "monday"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
			MaxUploadBytes:     int64(getEnvAsInt("SERVER_MAX_UPLOAD_MB", 20)) << 20,
			AllowedOrigins:     getEnvAsList("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			ShutdownTimeout:    getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Analytics: AnalyticsConfig{
			SynonymsFile: getEnv("ANALYTICS_SYNONYMS_FILE", ""),
			WeekStart:    weekStart,
			Currency:     strings.ToUpper(strings.TrimSpace(getEnv("ANALYTICS_CURRENCY", "EUR"))),
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", time.Hour),
		},
		Storage: StorageConfig{
			ArchiveDir:    getEnv("STORAGE_ARCHIVE_DIR", ""),
			SweepSchedule: getEnv("STORAGE_SWEEP_SCHEDULE", "*/15 * * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPath:    getEnv("METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT out of range: %d", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		return nil, errors.New("SERVER_MAX_UPLOAD_MB must be positive")
	}
	if !money.Valid(cfg.Analytics.Currency) {
		return nil, fmt.Errorf("ANALYTICS_CURRENCY is not a known ISO-4217 code: %q", cfg.Analytics.Currency)
	}

	return cfg, nil
}

// ParseWeekday accepts English or Spanish names of the supported week starts
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "mon", "lunes":
		return time.Monday, nil
	case "sunday", "sun", "domingo":
		return time.Sunday, nil
	case "saturday", "sat", "sabado", "sábado":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("ANALYTICS_WEEK_START must be monday, sunday or saturday, got %q", s)
	}
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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

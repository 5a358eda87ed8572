package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for dialog sessions
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	BotToken     string
	ContactEmail string
	Backend      BackendConfig
	Display      DisplayConfig
	Cleanup      CleanupConfig
	RateLimit    RateLimitConfig
	Log          LogConfig
	MetricsAddr  string
	StateStorage string
	Database     DatabaseConfig
}

// BackendConfig holds settings of the budget backend gateway
type BackendConfig struct {
	URL            string
	Token          string
	IDCacheTTL     time.Duration
	RequestTimeout time.Duration
}

// DisplayConfig holds text rendering limits
type DisplayConfig struct {
	MaxGroupNameLen int
	NameWidth       int
	ValueWidth      int
}

// CleanupConfig controls deletion of stale prompts
type CleanupConfig struct {
	RetryCount    int
	RetryInterval time.Duration
}

// RateLimitConfig controls per-user inbound throttling
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
	File  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string

	// SessionRetentionDays is how long an abandoned dialog is kept.
	SessionRetentionDays int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		ContactEmail: os.Getenv("CONTACT_EMAIL"),
		Backend: BackendConfig{
			URL:   os.Getenv("BACKEND_URL"),
			Token: os.Getenv("BACKEND_TOKEN"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		MetricsAddr:  os.Getenv("METRICS_ADDR"),
		StateStorage: getEnv("STATE_STORAGE", StorageMemory),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "ffbot"),
			User:     getEnv("DB_USER", "ffbot"),
			Password: os.Getenv("DB_PASSWORD"),
		},
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}
	if cfg.Backend.Token == "" {
		return nil, fmt.Errorf("BACKEND_TOKEN is required")
	}

	var err error
	if cfg.Backend.IDCacheTTL, err = getDuration("BACKEND_ID_CACHE_TTL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Backend.RequestTimeout, err = getDuration("BACKEND_REQUEST_TIMEOUT", 300*time.Second); err != nil {
		return nil, err
	}
	if cfg.Display.MaxGroupNameLen, err = getInt("MAX_GROUP_NAME_LEN", 15); err != nil {
		return nil, err
	}
	if cfg.Display.NameWidth, err = getInt("SUMMARY_NAME_WIDTH", 15); err != nil {
		return nil, err
	}
	if cfg.Display.ValueWidth, err = getInt("SUMMARY_VALUE_WIDTH", 6); err != nil {
		return nil, err
	}
	if cfg.Cleanup.RetryCount, err = getInt("DELETE_RETRY_COUNT", 3); err != nil {
		return nil, err
	}
	if cfg.Cleanup.RetryInterval, err = getDuration("DELETE_RETRY_INTERVAL", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.RateLimit.PerSecond, err = getFloat("RATE_LIMIT_PER_SECOND", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = getInt("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.Database.SessionRetentionDays, err = getInt("SESSION_RETENTION_DAYS", 7); err != nil {
		return nil, err
	}

	switch cfg.StateStorage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD is required for postgres state storage")
		}
	default:
		return nil, fmt.Errorf("unknown STATE_STORAGE %q", cfg.StateStorage)
	}

	return cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", key)
	}
	return f, nil
}

// getDuration accepts Go durations ("500ms") and bare seconds ("10").
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

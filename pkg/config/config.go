package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production
	HTTP HTTPConfig

	// Backends
	Industry BackendConfig
	Fred     BackendConfig

	// Database (saved views). Empty URL keeps views in memory.
	Database DatabaseConfig

	// Redis (series cache)
	Redis RedisConfig

	// Viewer behaviour
	Viewer ViewerConfig

	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
}

// HTTPConfig holds API server timeouts.
// The write timeout is derived from the slowest backend, see WriteTimeout.
type HTTPConfig struct {
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig holds one upstream series service
type BackendConfig struct {
	BaseURL   string
	RateLimit float64 // requests per second, 0 = unlimited
	Burst     int
	Timeout   time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	Enabled   bool
	SeriesTTL time.Duration

	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether saved views go to PostgreSQL
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ViewerConfig holds dashboard defaults
type ViewerConfig struct {
	DefaultTitle    string
	DebounceWindow  time.Duration
	CatalogSchedule string // cron expression (with seconds)
	SessionIdleTTL  time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),
		HTTP: HTTPConfig{
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", "15s"),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", "60s"),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", "30s"),
		},

		Industry: BackendConfig{
			BaseURL:   getEnv("INDUSTRY_BASE_URL", "https://SERVER04:9000"),
			RateLimit: getEnvAsFloat("INDUSTRY_RATE_LIMIT", 10),
			Burst:     getEnvAsInt("INDUSTRY_RATE_BURST", 10),
			Timeout:   getEnvAsDuration("INDUSTRY_TIMEOUT", "30s"),
		},

		Fred: BackendConfig{
			BaseURL:   getEnv("FRED_BASE_URL", "https://SERVER04:8000"),
			RateLimit: getEnvAsFloat("FRED_RATE_LIMIT", 10),
			Burst:     getEnvAsInt("FRED_RATE_BURST", 10),
			Timeout:   getEnvAsDuration("FRED_TIMEOUT", "30s"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			Enabled:   getEnvAsBool("REDIS_ENABLED", false),
			SeriesTTL: getEnvAsDuration("REDIS_SERIES_TTL", "10m"),

			DialTimeout: getEnvAsDuration("REDIS_DIAL_TIMEOUT", "5s"),
			ReadTimeout: getEnvAsDuration("REDIS_READ_TIMEOUT", "3s"),
		},

		Viewer: ViewerConfig{
			DefaultTitle:    getEnv("VIEWER_DEFAULT_TITLE", "Untitled View"),
			DebounceWindow:  getEnvAsDuration("VIEWER_DEBOUNCE", "300ms"),
			CatalogSchedule: getEnv("VIEWER_CATALOG_SCHEDULE", "0 */30 * * * *"),
			SessionIdleTTL:  getEnvAsDuration("VIEWER_SESSION_IDLE_TTL", "2h"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// WriteTimeout covers the slowest backend fetch plus rendering.
// Websockets set their own deadlines.
func (c *Config) WriteTimeout() time.Duration {
	slowest := c.Industry.Timeout
	if c.Fred.Timeout > slowest {
		slowest = c.Fred.Timeout
	}
	return slowest + 30*time.Second
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	for name, b := range map[string]BackendConfig{"INDUSTRY_BASE_URL": c.Industry, "FRED_BASE_URL": c.Fred} {
		u, err := url.Parse(b.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, b.BaseURL)
		}
	}

	if c.Viewer.DebounceWindow < 0 {
		return fmt.Errorf("VIEWER_DEBOUNCE must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
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
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

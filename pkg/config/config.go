package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gavel-oj/gavel/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Session configuration
	Session SessionConfig

	// Limits holds tunable request caps
	Limits LimitsConfig

	// LogLevel controls structured log verbosity
	LogLevel observability.LogLevel

	// TestMode enables the destructive /test endpoints
	TestMode bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
	Timeout  time.Duration
}

// SessionConfig holds Redis-backed session configuration
type SessionConfig struct {
	RedisURL      string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
	TTL           time.Duration
	CookieName    string
	CookieSecure  bool
}

// LimitsConfig holds tunable request caps
type LimitsConfig struct {
	// PermissionControlMaxUsers caps the user allow-list of a single
	// PermissionControl during normalization; entries beyond the cap are
	// silently dropped.
	PermissionControlMaxUsers int

	// PermissionControlMaxGroups caps the group allow-list likewise.
	PermissionControlMaxGroups int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("GAVEL_HOST", "0.0.0.0"),
			Port:            getEnv("GAVEL_PORT", "9133"),
			ReadTimeout:     getEnvDuration("GAVEL_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("GAVEL_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("GAVEL_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("GAVEL_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:      getEnv("GAVEL_POSTGRES_URL", ""),
			MaxConns: getEnvInt("GAVEL_POSTGRES_MAX_CONNS", 20),
			MinConns: getEnvInt("GAVEL_POSTGRES_MIN_CONNS", 5),
			Timeout:  getEnvDuration("GAVEL_POSTGRES_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			RedisURL:      getEnv("GAVEL_REDIS_URL", "redis://localhost:6379"),
			RedisPassword: getEnv("GAVEL_REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("GAVEL_REDIS_DB", 0),
			RedisPoolSize: getEnvInt("GAVEL_REDIS_POOL_SIZE", 10),
			TTL:           getEnvDuration("GAVEL_SESSION_TTL", 30*24*time.Hour),
			CookieName:    getEnv("GAVEL_SESSION_COOKIE", "gavel_session"),
			CookieSecure:  getEnvBool("GAVEL_SESSION_COOKIE_SECURE", false),
		},
		Limits: LimitsConfig{
			PermissionControlMaxUsers:  getEnvInt("GAVEL_PC_MAX_USERS", 10),
			PermissionControlMaxGroups: getEnvInt("GAVEL_PC_MAX_GROUPS", 10),
		},
		LogLevel: parseLogLevel(getEnv("GAVEL_LOG_LEVEL", "info")),
		TestMode: getEnvBool("GAVEL_TEST_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.Session.RedisURL == "" {
		return fmt.Errorf("redis URL is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Limits.PermissionControlMaxUsers < 0 || c.Limits.PermissionControlMaxGroups < 0 {
		return fmt.Errorf("permission control limits must be non-negative")
	}
	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

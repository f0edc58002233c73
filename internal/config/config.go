package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Remote     RemoteConfig
	Retry      RetryConfig
	Metrics    MetricsConfig
	Repository RepositoryConfig
	API        APIConfig
	Auth       AuthConfig
	Logging    LoggingConfig
}

// RemoteConfig holds settings for the remote query/mutation API
type RemoteConfig struct {
	Endpoint     string
	APIKey       string
	SessionToken string
	Timeout      time.Duration
}

// RetryConfig holds retry logic settings
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// MetricsConfig holds operation metrics settings
type MetricsConfig struct {
	Enabled    bool
	BufferSize int
}

// RepositoryConfig holds generic repository settings
type RepositoryConfig struct {
	DefaultLimit      int
	MaxLimit          int
	ValidationEnabled bool
	AuditFields       bool
}

// APIConfig holds API server settings
type APIConfig struct {
	Port string
	Host string
}

// AuthConfig holds authentication settings for the admin surface
type AuthConfig struct {
	Enabled      bool
	SharedSecret string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Remote: RemoteConfig{
			Endpoint:     getEnv("REMOTE_API_ENDPOINT", ""),
			APIKey:       getEnv("REMOTE_API_KEY", ""),
			SessionToken: getEnv("REMOTE_SESSION_TOKEN", ""),
			Timeout:      parseDuration(getEnv("REMOTE_API_TIMEOUT", "30s"), 30*time.Second),
		},
		Retry: RetryConfig{
			MaxRetries: parseInt(getEnv("MAX_RETRIES", "3"), 3),
			BaseDelay:  parseDuration(getEnv("RETRY_BASE_DELAY", "1s"), time.Second),
		},
		Metrics: MetricsConfig{
			Enabled:    parseBool(getEnv("METRICS_ENABLED", "true")),
			BufferSize: parseInt(getEnv("METRICS_BUFFER_SIZE", "1000"), 1000),
		},
		Repository: RepositoryConfig{
			DefaultLimit:      parseInt(getEnv("REPO_DEFAULT_LIMIT", "50"), 50),
			MaxLimit:          parseInt(getEnv("REPO_MAX_LIMIT", "200"), 200),
			ValidationEnabled: parseBool(getEnv("REPO_VALIDATION_ENABLED", "true")),
			AuditFields:       parseBool(getEnv("REPO_AUDIT_FIELDS", "true")),
		},
		API: APIConfig{
			Port: getEnv("API_PORT", "8080"),
			Host: getEnv("API_HOST", "0.0.0.0"),
		},
		Auth: AuthConfig{
			Enabled:      parseBool(getEnv("ENABLE_AUTH", "false")),
			SharedSecret: getEnv("SHARED_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration fields are set
func (c *Config) Validate() error {
	if c.Remote.Endpoint == "" {
		return fmt.Errorf("REMOTE_API_ENDPOINT is required")
	}
	if c.Remote.APIKey == "" {
		return fmt.Errorf("REMOTE_API_KEY is required")
	}
	if c.Auth.Enabled && c.Auth.SharedSecret == "" {
		return fmt.Errorf("SHARED_SECRET is required when ENABLE_AUTH is true")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must not be negative")
	}
	if c.Repository.MaxLimit < c.Repository.DefaultLimit {
		return fmt.Errorf("REPO_MAX_LIMIT must be at least REPO_DEFAULT_LIMIT")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseInt(value string, defaultValue int) int {
	var result int
	_, err := fmt.Sscanf(value, "%d", &result)
	if err != nil {
		return defaultValue
	}
	return result
}

func parseBool(value string) bool {
	return value == "true" || value == "1" || value == "yes"
}

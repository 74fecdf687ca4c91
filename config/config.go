package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMealDBBaseURL is the public TheMealDB v1 endpoint with the shared test key.
	DefaultMealDBBaseURL = "https://www.themealdb.com/api/json/v1/1/"

	defaultServerHost     = "0.0.0.0"
	defaultServerPort     = "8080"
	defaultConnectTimeout = 30 * time.Second
	defaultReadTimeout    = 30 * time.Second
	defaultSessionIdle    = 30 * time.Minute
	defaultRateLimit      = 30
	defaultRateWindow     = time.Minute
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost string
	ServerPort string

	// Recipe API configuration
	MealDBBaseURL        string
	MealDBConnectTimeout time.Duration
	MealDBReadTimeout    time.Duration

	// HTTP API configuration
	AllowedOrigins     []string
	SessionIdleTimeout time.Duration

	// Redis configuration. Rate limiting is disabled when RedisURL is empty.
	RedisURL         string
	RedisPassword    string
	SearchRateLimit  int
	SearchRateWindow time.Duration
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Environment:          Development,
		ServerHost:           defaultServerHost,
		ServerPort:           defaultServerPort,
		MealDBBaseURL:        DefaultMealDBBaseURL,
		MealDBConnectTimeout: defaultConnectTimeout,
		MealDBReadTimeout:    defaultReadTimeout,
		AllowedOrigins:       []string{"http://localhost:5173"},
		SessionIdleTimeout:   defaultSessionIdle,
		SearchRateLimit:      defaultRateLimit,
		SearchRateWindow:     defaultRateWindow,
	}
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	cfg := Default()
	cfg.Environment = GetEnvironment()

	if err := loadEnvConfig(cfg); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", cfg.Environment, err)
	}

	// Outside CI, secrets may also be mounted as Docker secrets
	if cfg.Environment != CI {
		if cfg.RedisURL == "" {
			cfg.RedisURL = readSecret("redis_url")
		}
		if cfg.RedisPassword == "" {
			cfg.RedisPassword = readSecret("redis_password")
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ServerAddr returns the host:port the HTTP server listens on.
func (c *Config) ServerAddr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RateLimitEnabled reports whether query submissions are rate limited.
func (c *Config) RateLimitEnabled() bool {
	return c.RedisURL != ""
}

func loadEnvConfig(cfg *Config) error {
	var errs []string

	setString(&cfg.ServerHost, "SERVER_HOST")
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.MealDBBaseURL, "MEALDB_BASE_URL")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"MEALDB_CONNECT_TIMEOUT", &cfg.MealDBConnectTimeout},
		{"MEALDB_READ_TIMEOUT", &cfg.MealDBReadTimeout},
		{"SESSION_IDLE_TIMEOUT", &cfg.SessionIdleTimeout},
		{"SEARCH_RATE_WINDOW", &cfg.SearchRateWindow},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.name); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if v := os.Getenv("SEARCH_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("SEARCH_RATE_LIMIT: invalid integer %q", v))
		} else {
			cfg.SearchRateLimit = n
		}
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "\n"))
	}
	return nil
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", name, v)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

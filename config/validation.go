package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks every field and reports all problems at once.
func ValidateConfig(cfg *Config) error {
	var errs []error

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}

	if u, err := url.Parse(cfg.MealDBBaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{Field: "MEALDB_BASE_URL", Message: fmt.Sprintf("must be an absolute http(s) URL, got %q", cfg.MealDBBaseURL)})
	}

	if cfg.MealDBConnectTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "MEALDB_CONNECT_TIMEOUT", Message: "must be positive"})
	}
	if cfg.MealDBReadTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "MEALDB_READ_TIMEOUT", Message: "must be positive"})
	}
	if len(cfg.AllowedOrigins) == 0 {
		errs = append(errs, ValidationError{Field: "CORS_ALLOWED_ORIGINS", Message: "must list at least one origin"})
	} else if err := validateOrigins(cfg.AllowedOrigins); err != nil {
		errs = append(errs, ValidationError{Field: "CORS_ALLOWED_ORIGINS", Message: err.Error()})
	}
	if cfg.SessionIdleTimeout <= 0 {
		errs = append(errs, ValidationError{Field: "SESSION_IDLE_TIMEOUT", Message: "must be positive"})
	}

	if cfg.RateLimitEnabled() {
		if !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
			errs = append(errs, ValidationError{Field: "REDIS_URL", Message: "must use the redis:// or rediss:// scheme"})
		}
		if cfg.SearchRateLimit <= 0 {
			errs = append(errs, ValidationError{Field: "SEARCH_RATE_LIMIT", Message: "must be positive"})
		}
		if cfg.SearchRateWindow <= 0 {
			errs = append(errs, ValidationError{Field: "SEARCH_RATE_WINDOW", Message: "must be positive"})
		}
	}

	return errors.Join(errs...)
}

// validateOrigins applies the same checks the CORS middleware panics on.
// A "*" entry allows every origin and makes the rest irrelevant.
func validateOrigins(origins []string) error {
	for _, origin := range origins {
		if origin == "*" {
			return nil
		}
	}
	return cors.Config{AllowOrigins: origins}.Validate()
}

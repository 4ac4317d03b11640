package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that every value the services need to start is
// present. Validation failures are fatal at boot; nothing runs on a
// partial configuration.
func ValidateConfig(cfg *Config) error {
	required := map[string]string{
		"server port":    cfg.ServerPort,
		"server host":    cfg.ServerHost,
		"database host":  cfg.DBHost,
		"database port":  cfg.DBPort,
		"database user":  cfg.DBUser,
		"database name":  cfg.DBName,
		"jwt secret":     cfg.JWTSecret,
	}

	var errors []string
	for field, value := range required {
		if value == "" {
			errors = append(errors, fmt.Sprintf("%s is not set", field))
		}
	}

	// Redis can be configured either by URL or by host/port pair
	if cfg.RedisURL == "" && (cfg.RedisHost == "" || cfg.RedisPort == "") {
		errors = append(errors, "redis is not configured: set REDIS_URL or REDIS_HOST and REDIS_PORT")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

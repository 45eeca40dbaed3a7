// Package config loads the admin API's environment-sourced settings.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every environment-sourced setting the admin API needs.
type Config struct {
	Port          int
	DatabaseURL   string
	AdminAPIToken string
	Environment   string
}

// Load reads Config from the process environment.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	token := os.Getenv("ADMIN_API_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("ADMIN_API_TOKEN is required")
	}

	return &Config{
		Port:          getEnvInt("ADMIN_API_PORT", 8081),
		DatabaseURL:   dbURL,
		AdminAPIToken: token,
		Environment:   getEnv("ENVIRONMENT", "development"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

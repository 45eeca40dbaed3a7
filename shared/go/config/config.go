// Package config loads shared environment-backed settings used across
// TrueSight's services.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig contains connection-pool parameters for the relational
// store shared by the admin API and the ingestion edge's credential lookup.
type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// TelemetryConfig controls OpenTelemetry exporters.
type TelemetryConfig struct {
	Endpoint string
	Protocol string
	Headers  map[string]string
	Insecure bool
}

// LoadDatabaseConfig reads DATABASE_URL-family variables.
func LoadDatabaseConfig(urlEnv string) DatabaseConfig {
	return DatabaseConfig{
		DSN:             GetEnv(urlEnv, ""),
		MaxIdleConns:    GetEnvInt("DATABASE_MAX_IDLE_CONNS", 2),
		MaxOpenConns:    GetEnvInt("DATABASE_MAX_OPEN_CONNS", 10),
		ConnMaxLifetime: GetEnvDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// LoadTelemetryConfig reads OTEL_EXPORTER_OTLP_* variables.
func LoadTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Endpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Protocol: strings.ToLower(GetEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		Headers:  parseHeaders(GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "")),
		Insecure: GetEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
	}
}

// GetEnv returns the environment variable or a fallback.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// GetEnvInt parses an integer environment variable or returns a fallback.
func GetEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetEnvDuration parses a duration environment variable or returns a fallback.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// GetEnvBool parses a boolean environment variable or returns a fallback.
func GetEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		v = strings.ToLower(strings.TrimSpace(v))
		return v == "1" || v == "true" || v == "yes"
	}
	return fallback
}

func parseHeaders(raw string) map[string]string {
	headers := map[string]string{}
	if raw == "" {
		return headers
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		headers[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return headers
}

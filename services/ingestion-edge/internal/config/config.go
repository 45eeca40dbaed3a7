// Package config loads ingestion-edge's process configuration from the
// environment via envconfig, mirroring the shared logging/telemetry config
// conventions used across TrueSight services.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment-sourced setting the ingestion edge needs
// to start serving traffic.
type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	AWSRegion        string `envconfig:"AWS_REGION" default:"us-east-1"`
	SQSEndpointURL   string `envconfig:"SQS_ENDPOINT_URL"`
	EventsQueueURL   string `envconfig:"EVENTS_QUEUE_URL" required:"true"`

	RateLimitPerSecond float64 `envconfig:"RATE_LIMIT_PER_SECOND" default:"1000"`
	RateLimitBurst     float64 `envconfig:"RATE_LIMIT_BURST" default:"200"`

	ApiKeyCacheTTLSeconds int `envconfig:"API_KEY_CACHE_TTL_SECONDS" default:"300"`

	MaxDecompressedBodyBytes int `envconfig:"MAX_DECOMPRESSED_BODY_BYTES" default:"4194304"`

	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	OtelExporterEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterProtocol string `envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL" default:"grpc"`
}

// Load reads Config from the process environment, failing fast on any
// missing required variable.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load ingestion-edge config: %w", err)
	}
	return &cfg, nil
}

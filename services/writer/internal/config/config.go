// Package config loads the writer's environment-sourced settings.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every environment-sourced setting the writer needs at boot.
type Config struct {
	AWSRegion      string
	SQSEndpointURL string
	EventsQueueURL string
	DLQURL         string

	ClickHouseURL      string
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string

	NumConsumers       int
	ReceiveBatchSize   int32
	ReceiveWaitSeconds int32
	ChannelBuffer      int

	BatchSize          int
	FlushIntervalMs    int
	MaxInFlight        int64

	HealthPort int

	Environment string
}

// Load reads Config from the process environment.
func Load() (*Config, error) {
	queueURL := os.Getenv("SQS_QUEUE_URL")
	if queueURL == "" {
		return nil, fmt.Errorf("SQS_QUEUE_URL is required")
	}

	chURL := os.Getenv("CLICKHOUSE_URL")
	if chURL == "" {
		return nil, fmt.Errorf("CLICKHOUSE_URL is required")
	}

	cfg := &Config{
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		SQSEndpointURL: os.Getenv("SQS_ENDPOINT_URL"),
		EventsQueueURL: queueURL,
		DLQURL:         os.Getenv("SQS_DLQ_URL"),

		ClickHouseURL:      chURL,
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "truesight"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: os.Getenv("CLICKHOUSE_PASSWORD"),

		NumConsumers:       getEnvInt("NUM_CONSUMERS", 3),
		ReceiveBatchSize:   int32(getEnvInt("SQS_RECEIVE_BATCH_SIZE", 10)),
		ReceiveWaitSeconds: int32(getEnvInt("SQS_RECEIVE_WAIT_SECONDS", 20)),
		ChannelBuffer:      getEnvInt("CHANNEL_BUFFER", 10000),

		BatchSize:       getEnvInt("CH_BATCH_SIZE", 5000),
		FlushIntervalMs: getEnvInt("CH_FLUSH_INTERVAL_MS", 2000),
		MaxInFlight:     int64(getEnvInt("MAX_IN_FLIGHT", 3)),

		HealthPort: getEnvInt("HEALTH_PORT", 9090),

		Environment: getEnv("ENVIRONMENT", "development"),
	}

	return cfg, nil
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

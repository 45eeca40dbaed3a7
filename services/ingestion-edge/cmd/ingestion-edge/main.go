// Command ingestion-edge serves the public event-intake HTTP API.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/truesight/shared-go/credentials"
	sharedconfig "github.com/truesight/shared-go/config"
	"github.com/truesight/shared-go/dataaccess"
	"github.com/truesight/shared-go/logging"
	"github.com/truesight/shared-go/observability"
	"github.com/truesight/shared-go/queue"
	"github.com/truesight/shared-go/ratelimit"

	"github.com/truesight/services/ingestion-edge/internal/api"
	"github.com/truesight/services/ingestion-edge/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ingestion-edge: fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.MustNew(logging.Config{
		ServiceName: "ingestion-edge",
		Environment: cfg.Environment,
	})
	defer log.Sync()

	telemetry, err := observability.Init(ctx, "ingestion-edge", cfg.Environment, sharedconfig.TelemetryConfig{
		Endpoint: cfg.OtelExporterEndpoint,
		Protocol: cfg.OtelExporterProtocol,
		Insecure: true,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer telemetry.Shutdown(context.Background())

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	dataaccess.ConfigureSQL(db, sharedconfig.DatabaseConfig{
		MaxIdleConns:    2,
		MaxOpenConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	sqsClient, err := queue.NewClient(ctx, cfg.AWSRegion, cfg.SQSEndpointURL)
	if err != nil {
		return fmt.Errorf("build sqs client: %w", err)
	}

	keyCache := credentials.NewKeyCache()
	rateLimiter := ratelimit.NewRegistry(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	healthRegistry := dataaccess.NewRegistry("1.0.0")
	healthRegistry.Register("database", dataaccess.SQLProbe(db))
	healthRegistry.Register("sqs", func(ctx context.Context) error {
		return sqsClient.QueueDepth(ctx, cfg.EventsQueueURL)
	})

	router := api.NewRouter(api.Deps{
		DB:             db,
		Queue:          sqsClient,
		QueueURL:       cfg.EventsQueueURL,
		KeyCache:       keyCache,
		CacheTTLSecs:   cfg.ApiKeyCacheTTLSeconds,
		RateLimiter:    rateLimiter,
		HealthRegistry: healthRegistry,
		Logger:         log.Logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Logger.Info("ingestion-edge listening", zap.Int("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

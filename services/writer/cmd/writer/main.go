// Command writer drains the events queue, coalesces events into batches,
// and lands them in the columnar store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/truesight/shared-go/dataaccess"
	"github.com/truesight/shared-go/logging"
	"github.com/truesight/shared-go/queue"

	"github.com/truesight/services/writer/internal/batcher"
	"github.com/truesight/services/writer/internal/config"
	"github.com/truesight/services/writer/internal/consumer"
	"github.com/truesight/services/writer/internal/health"
	"github.com/truesight/services/writer/internal/identity"
	"github.com/truesight/services/writer/internal/inserter"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "writer: fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.MustNew(logging.Config{
		ServiceName: "writer",
		Environment: cfg.Environment,
	})
	defer log.Sync()

	dlqURL := cfg.DLQURL
	if dlqURL == "" {
		dlqURL = queue.DLQURL(cfg.EventsQueueURL)
	}

	eventsCh := make(chan consumer.IncomingEvent, cfg.ChannelBuffer)

	ins := inserter.New(cfg.ClickHouseURL, cfg.ClickHouseDatabase, cfg.ClickHouseUser, cfg.ClickHousePassword, "events")
	identityResolver := identity.New(cfg.ClickHouseURL, cfg.ClickHouseDatabase, cfg.ClickHouseUser, cfg.ClickHousePassword)

	// A separate client for the batcher's deletes/DLQ sends, and one more
	// per consumer loop, avoids sharing mutable client state across
	// goroutines.
	batcherQueueClient, err := queue.NewClient(rootCtx, cfg.AWSRegion, cfg.SQSEndpointURL)
	if err != nil {
		return fmt.Errorf("build batcher queue client: %w", err)
	}

	b := &batcher.Batcher{
		In:            eventsCh,
		Inserter:      ins,
		Identity:      identityResolver,
		Queue:         batcherQueueClient,
		QueueURL:      cfg.EventsQueueURL,
		DLQURL:        dlqURL,
		BatchSize:     cfg.BatchSize,
		FlushInterval: time.Duration(cfg.FlushIntervalMs) * time.Millisecond,
		MaxInFlight:   cfg.MaxInFlight,
		Logger:        log.Logger,
	}

	consumerCtx, cancelConsumers := context.WithCancel(context.Background())

	var consumerWG sync.WaitGroup
	for i := 0; i < cfg.NumConsumers; i++ {
		client, err := queue.NewClient(rootCtx, cfg.AWSRegion, cfg.SQSEndpointURL)
		if err != nil {
			cancelConsumers()
			return fmt.Errorf("build consumer %d queue client: %w", i, err)
		}

		loop := &consumer.Loop{
			Client:           client,
			QueueURL:         cfg.EventsQueueURL,
			DLQURL:           dlqURL,
			ReceiveBatchSize: cfg.ReceiveBatchSize,
			ReceiveWait:      cfg.ReceiveWaitSeconds,
			Out:              eventsCh,
			Logger:           log.Logger,
		}

		consumerWG.Add(1)
		go func(idx int) {
			defer consumerWG.Done()
			if err := loop.Run(consumerCtx); err != nil {
				log.Logger.Error("consumer loop exited with error", zap.Int("consumer", idx), zap.Error(err))
			}
		}(i)
	}

	batcherDone := make(chan struct{})
	go func() {
		defer close(batcherDone)
		b.Run(context.Background())
	}()

	healthRegistry := dataaccess.NewRegistry("1.0.0")
	healthCtx, cancelHealth := context.WithCancel(context.Background())
	healthDone := make(chan struct{})
	go func() {
		defer close(healthDone)
		if err := health.Serve(healthCtx, cfg.HealthPort, healthRegistry); err != nil {
			log.Logger.Error("health server exited with error", zap.Error(err))
		}
	}()

	log.Logger.Info("writer started",
		zap.Int("num_consumers", cfg.NumConsumers),
		zap.Int("health_port", cfg.HealthPort),
	)

	<-rootCtx.Done()
	log.Logger.Info("shutdown signal received, stopping consumers")

	cancelConsumers()
	consumerWG.Wait()
	close(eventsCh)

	log.Logger.Info("consumers stopped, draining batcher")
	<-batcherDone

	log.Logger.Info("batcher drained, stopping health server")
	cancelHealth()
	<-healthDone

	return nil
}

// Package batcher coalesces consumed events into size-or-time triggered
// batches and drives bounded-concurrency flushes to the columnar inserter.
package batcher

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/truesight/shared-go/eventmodel"
	"github.com/truesight/shared-go/queue"

	"github.com/truesight/services/writer/internal/consumer"
	"github.com/truesight/services/writer/internal/identity"
	"github.com/truesight/services/writer/internal/inserter"
	"github.com/truesight/services/writer/internal/rows"
)

// Batcher consumes IncomingEvents from In, coalesces them into
// size-or-time triggered batches, and flushes each batch under a bounded
// semaphore of in-flight inserts.
type Batcher struct {
	In              <-chan consumer.IncomingEvent
	Inserter        *inserter.Inserter
	Identity        *identity.Resolver
	Queue           *queue.Client
	QueueURL        string
	DLQURL          string
	BatchSize       int
	FlushInterval   time.Duration
	MaxInFlight     int64
	Logger          *zap.Logger

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// Run drains In until it closes, flushing on size or timer triggers, then
// waits for every outstanding in-flight flush before returning.
func (b *Batcher) Run(ctx context.Context) {
	b.sem = semaphore.NewWeighted(b.MaxInFlight)

	buffer := make([]consumer.IncomingEvent, 0, b.BatchSize)
	ticker := time.NewTicker(b.FlushInterval)
	defer ticker.Stop()

	flush := func(batch []consumer.IncomingEvent) {
		if len(batch) == 0 {
			return
		}
		if err := b.sem.Acquire(ctx, 1); err != nil {
			return
		}
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer b.sem.Release(1)
			b.flushBatch(ctx, batch)
		}()
	}

	for {
		select {
		case incoming, ok := <-b.In:
			if !ok {
				flush(buffer)
				b.wg.Wait()
				return
			}
			buffer = append(buffer, incoming)
			if len(buffer) >= b.BatchSize {
				toFlush := buffer
				buffer = make([]consumer.IncomingEvent, 0, b.BatchSize)
				ticker.Reset(b.FlushInterval)
				flush(toFlush)
			}

		case <-ticker.C:
			if len(buffer) > 0 {
				toFlush := buffer
				buffer = make([]consumer.IncomingEvent, 0, b.BatchSize)
				flush(toFlush)
			}

		case <-ctx.Done():
			flush(buffer)
			b.wg.Wait()
			return
		}
	}
}

// flushBatch projects the batch and inserts it. On success it stitches
// identity mappings for Identify events and deletes the batch from the
// source queue. On failure every message body is forwarded to the DLQ and
// then deleted from source, converting permanent insert failures into
// inspectable DLQ entries without blocking the pipeline.
func (b *Batcher) flushBatch(ctx context.Context, batch []consumer.IncomingEvent) {
	projected := make([]rows.EventRow, 0, len(batch))
	for i := range batch {
		projected = append(projected, rows.Project(&batch[i].Event))
	}

	if err := b.Inserter.InsertBatch(ctx, projected); err != nil {
		b.Logger.Error("insert batch failed, routing to dlq", zap.Int("count", len(batch)), zap.Error(err))
		b.routeToDLQ(ctx, batch, err)
		return
	}

	for i := range batch {
		e := &batch[i].Event
		if e.EventType == eventmodel.Identify && e.UserID != nil && *e.UserID != "" {
			if err := b.Identity.Resolve(ctx, e); err != nil {
				b.Logger.Error("identity resolution failed", zap.Error(err))
			}
		}
	}

	entries := make([]queue.DeleteEntry, 0, len(batch))
	for i, incoming := range batch {
		entries = append(entries, queue.DeleteEntry{ID: deleteID(i), ReceiptHandle: incoming.ReceiptHandle})
	}
	if err := b.Queue.DeleteBatch(ctx, b.QueueURL, entries); err != nil {
		b.Logger.Error("delete batch failed after successful insert", zap.Error(err))
	}
}

func (b *Batcher) routeToDLQ(ctx context.Context, batch []consumer.IncomingEvent, cause error) {
	reason := "insert failure: " + cause.Error()
	for _, incoming := range batch {
		if err := b.Queue.SendToDLQ(ctx, b.DLQURL, incoming.RawBody, reason); err != nil {
			b.Logger.Error("failed to forward failed insert to dlq", zap.Error(err))
			continue
		}
		if err := b.Queue.DeleteMessage(ctx, b.QueueURL, incoming.ReceiptHandle); err != nil {
			b.Logger.Error("failed to delete message after dlq forward", zap.Error(err))
		}
	}
}

func deleteID(i int) string {
	return "del_" + strconv.Itoa(i)
}

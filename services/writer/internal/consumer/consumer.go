// Package consumer implements the writer's long-poll consumer loop pool.
package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/truesight/shared-go/eventmodel"
	"github.com/truesight/shared-go/queue"
)

// IncomingEvent pairs a successfully deserialized event with the receipt
// handle needed to acknowledge (or redeliver) it, and the raw body for DLQ
// forwarding on downstream failure.
type IncomingEvent struct {
	Event         eventmodel.EnrichedEvent
	ReceiptHandle string
	RawBody       string
}

// Loop owns one queue client and long-polls it until shutdown is observed
// through ctx. It does not detect a closed Out channel; the writer closes
// Out only after every loop has returned.
type Loop struct {
	Client           *queue.Client
	QueueURL         string
	DLQURL           string
	ReceiveBatchSize int32
	ReceiveWait      int32
	Out              chan<- IncomingEvent
	Logger           *zap.Logger
}

// Run drives the loop until ctx is canceled. A transient receive error
// sleeps one second and retries rather than exiting.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		messages, err := l.Client.Receive(ctx, l.QueueURL, l.ReceiveBatchSize, l.ReceiveWait)
		if err != nil {
			l.Logger.Warn("receive error, retrying", zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, msg := range messages {
			if msg.Body == "" || msg.ReceiptHandle == "" {
				l.Logger.Warn("dropping message missing body or receipt handle")
				continue
			}

			var enriched eventmodel.EnrichedEvent
			if err := json.Unmarshal([]byte(msg.Body), &enriched); err != nil {
				l.handlePoison(ctx, msg.Body, msg.ReceiptHandle, err)
				continue
			}

			select {
			case l.Out <- IncomingEvent{Event: enriched, ReceiptHandle: msg.ReceiptHandle, RawBody: msg.Body}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (l *Loop) handlePoison(ctx context.Context, body, receiptHandle string, cause error) {
	reason := "deserialisation error: " + cause.Error()
	if err := l.Client.SendToDLQ(ctx, l.DLQURL, body, reason); err != nil {
		l.Logger.Error("failed to forward poison message to dlq", zap.Error(err))
		return
	}
	if err := l.Client.DeleteMessage(ctx, l.QueueURL, receiptHandle); err != nil {
		l.Logger.Error("failed to delete poison message from source", zap.Error(err))
	}
}

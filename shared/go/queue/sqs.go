// Package queue wraps SQS behind the thin send/receive/delete/DLQ contract
// the ingestion edge and writer pipeline share.
package queue

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Message is a received queue message exposing only what callers need: an
// opaque body and the receipt handle used to acknowledge it.
type Message struct {
	Body          string
	ReceiptHandle string
}

// Client wraps an SQS client and implements the send/receive/delete/DLQ
// contract. A single Client can act as both producer and consumer; the
// writer constructs one per consumer goroutine to avoid shared state.
type Client struct {
	sqs *sqs.Client
}

// NewClient builds a Client from the given region, optionally overriding the
// endpoint (e.g. for local-stack style SQS emulation).
func NewClient(ctx context.Context, region string, endpointURL string) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var sqsOpts []func(*sqs.Options)
	if endpointURL != "" {
		sqsOpts = append(sqsOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
		})
	}

	return &Client{sqs: sqs.NewFromConfig(cfg, sqsOpts...)}, nil
}

// EventAttributes carries the three string message attributes every
// enriched-event send/DLQ message mirrors from its top-level fields.
type EventAttributes struct {
	ProjectID string
	EventType string
	EventID   string
}

// SendBatch sends bodies (already-serialized EnrichedEvent JSON) to
// queueURL, chunked in groups of 10 (SQS's SendMessageBatch limit). Any
// per-message failure within a chunk fails the whole call.
func (c *Client) SendBatch(ctx context.Context, queueURL string, bodies []string, attrs []EventAttributes) error {
	if len(bodies) != len(attrs) {
		return fmt.Errorf("send batch: bodies and attrs length mismatch")
	}

	for start := 0; start < len(bodies); start += 10 {
		end := start + 10
		if end > len(bodies) {
			end = len(bodies)
		}

		entries := make([]types.SendMessageBatchRequestEntry, 0, end-start)
		for i := start; i < end; i++ {
			a := attrs[i]
			entries = append(entries, types.SendMessageBatchRequestEntry{
				Id:          aws.String(fmt.Sprintf("msg_%d", i-start)),
				MessageBody: aws.String(bodies[i]),
				MessageAttributes: map[string]types.MessageAttributeValue{
					"project_id": stringAttr(a.ProjectID),
					"event_type": stringAttr(a.EventType),
					"event_id":   stringAttr(a.EventID),
				},
			})
		}

		out, err := c.sqs.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: aws.String(queueURL),
			Entries:  entries,
		})
		if err != nil {
			return fmt.Errorf("sqs send_message_batch: %w", err)
		}
		if len(out.Failed) > 0 {
			return fmt.Errorf("sqs send_message_batch: %d messages failed", len(out.Failed))
		}
	}

	return nil
}

// Receive long-polls the queue for up to max messages, waiting up to
// waitSeconds for at least one to arrive.
func (c *Client) Receive(ctx context.Context, queueURL string, max, waitSeconds int32) ([]Message, error) {
	out, err := c.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: max,
		WaitTimeSeconds:     waitSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("sqs receive_message: %w", err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		if m.Body == nil || m.ReceiptHandle == nil {
			continue
		}
		messages = append(messages, Message{Body: *m.Body, ReceiptHandle: *m.ReceiptHandle})
	}
	return messages, nil
}

// DeleteEntry pairs a caller-chosen ID with the receipt handle to delete.
type DeleteEntry struct {
	ID            string
	ReceiptHandle string
}

// DeleteBatch deletes entries from queueURL in chunks of 10. Failures are
// the caller's responsibility to log; this never retries, matching the
// design's accepted redelivery-then-dedup tolerance.
func (c *Client) DeleteBatch(ctx context.Context, queueURL string, entries []DeleteEntry) error {
	for start := 0; start < len(entries); start += 10 {
		end := start + 10
		if end > len(entries) {
			end = len(entries)
		}

		batch := make([]types.DeleteMessageBatchRequestEntry, 0, end-start)
		for _, e := range entries[start:end] {
			batch = append(batch, types.DeleteMessageBatchRequestEntry{
				Id:            aws.String(e.ID),
				ReceiptHandle: aws.String(e.ReceiptHandle),
			})
		}

		_, err := c.sqs.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
			QueueUrl: aws.String(queueURL),
			Entries:  batch,
		})
		if err != nil {
			return fmt.Errorf("sqs delete_message_batch: %w", err)
		}
	}
	return nil
}

// DeleteMessage deletes a single message, used for poison-pill cleanup.
func (c *Client) DeleteMessage(ctx context.Context, queueURL, receiptHandle string) error {
	_, err := c.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("sqs delete_message: %w", err)
	}
	return nil
}

// SendToDLQ forwards a failed message body to the dead-letter queue,
// attaching an error_reason attribute so operators can triage without
// parsing the body.
func (c *Client) SendToDLQ(ctx context.Context, dlqURL, body, reason string) error {
	_, err := c.sqs.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(dlqURL),
		MessageBody: aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"error_reason": stringAttr(reason),
		},
	})
	if err != nil {
		return fmt.Errorf("sqs send to dlq: %w", err)
	}
	return nil
}

// QueueDepth probes connectivity by fetching the approximate message count,
// used by liveness checks.
func (c *Client) QueueDepth(ctx context.Context, queueURL string) error {
	_, err := c.sqs.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return fmt.Errorf("sqs get_queue_attributes: %w", err)
	}
	return nil
}

func stringAttr(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}

// DLQURL derives the dead-letter queue URL by the repo-wide convention:
// suffix the source queue URL with "-dlq". The design notes flag this as
// fragile; production deployments should take it as explicit configuration.
func DLQURL(queueURL string) string {
	return queueURL + "-dlq"
}

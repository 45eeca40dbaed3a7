// Package event re-exports the shared wire schema and adds the validation
// rules the ingestion edge enforces before enqueueing a batch.
package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/truesight/shared-go/eventmodel"
)

// Type aliases keep the ingestion edge's call sites reading naturally
// while the wire schema itself lives in shared-go, next to the writer that
// consumes it across the queue boundary.
type (
	Type          = eventmodel.Type
	DeviceContext = eventmodel.DeviceContext
	IngestEvent   = eventmodel.IngestEvent
	EnrichedEvent = eventmodel.EnrichedEvent
	BatchRequest  = eventmodel.BatchRequest
)

const (
	Track    = eventmodel.Track
	Identify = eventmodel.Identify
	Screen   = eventmodel.Screen
)

const (
	maxEventNameLen = 256
	maxBatchSize    = 100
	maxEventBytes   = 32 * 1024
	maxBodyBytes    = 4 * 1024 * 1024
)

var eventNameAllowed = func() [256]bool {
	var allowed [256]bool
	for c := 'a'; c <= 'z'; c++ {
		allowed[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		allowed[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		allowed[c] = true
	}
	for _, c := range []byte(" _.-$") {
		allowed[c] = true
	}
	return allowed
}()

// Validate enforces every field-level and temporal rule from the data
// model, collecting every failure rather than stopping at the first —
// callers are expected to join and return the full list.
func Validate(e *IngestEvent, now time.Time) []string {
	var errs []string

	if len(e.EventName) == 0 || len(e.EventName) > maxEventNameLen {
		errs = append(errs, fmt.Sprintf("event_name must be 1-%d characters", maxEventNameLen))
	} else {
		for i := 0; i < len(e.EventName); i++ {
			if !eventNameAllowed[e.EventName[i]] {
				errs = append(errs, "event_name contains invalid characters")
				break
			}
		}
	}

	if e.AnonymousID == "" {
		errs = append(errs, "anonymous_id must not be empty")
	}

	if e.EventType == Identify && (e.UserID == nil || *e.UserID == "") {
		errs = append(errs, "identify events require a non-empty user_id")
	}

	if e.MobileNumber != nil {
		if !isTenDigits(*e.MobileNumber) {
			errs = append(errs, "mobile_number must be exactly 10 digits")
		}
	}

	if e.Email != nil {
		if !isValidEmail(*e.Email) {
			errs = append(errs, "email must contain '@' and '.' and be at least 5 characters")
		}
	}

	lowerBound := now.Add(-30 * 24 * time.Hour)
	upperBound := now.Add(24 * time.Hour)
	if e.ClientTimestamp.Before(lowerBound) || e.ClientTimestamp.After(upperBound) {
		errs = append(errs, "client_timestamp must be within 30 days in the past or 24 hours in the future")
	}

	if size := estimateSize(e); size > maxEventBytes {
		errs = append(errs, fmt.Sprintf("event %s exceeds maximum size of %d bytes", e.EventID, maxEventBytes))
	}

	return errs
}

// ValidateBatch enforces the 1..=100 batch-size bound.
func ValidateBatch(b *BatchRequest) []string {
	if len(b.Batch) == 0 {
		return []string{"batch must contain at least 1 event"}
	}
	if len(b.Batch) > maxBatchSize {
		return []string{fmt.Sprintf("batch must contain at most %d events, got %d", maxBatchSize, len(b.Batch))}
	}
	return nil
}

// ValidateBodySize enforces the post-decompression body ceiling.
func ValidateBodySize(body []byte) error {
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body exceeds maximum size of %d bytes (actual: %d bytes)", maxBodyBytes, len(body))
	}
	return nil
}

func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isValidEmail(s string) bool {
	return len(s) >= 5 && bytes.ContainsRune([]byte(s), '@') && bytes.ContainsRune([]byte(s), '.')
}

func estimateSize(e *IngestEvent) int {
	b, err := json.Marshal(e)
	if err != nil {
		return 0
	}
	return len(b)
}

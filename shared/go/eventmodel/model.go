// Package eventmodel defines the wire-inbound and enriched event shapes
// shared by the ingestion edge (producer) and the writer (consumer) across
// the queue boundary.
package eventmodel

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type is one of Track, Identify, Screen, rendered on the wire in
// lowercase.
type Type int

const (
	Track Type = iota
	Identify
	Screen
)

var typeNames = map[Type]string{
	Track:    "track",
	Identify: "identify",
	Screen:   "screen",
}

var namesToType = map[string]Type{
	"track":    Track,
	"identify": Identify,
	"screen":   Screen,
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON renders the lowercase wire form.
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON parses the lowercase wire form.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := namesToType[s]
	if !ok {
		return fmt.Errorf("unknown event_type %q", s)
	}
	*t = parsed
	return nil
}

// DeviceContext carries SDK/device metadata required on every event.
type DeviceContext struct {
	AppVersion  *string `json:"app_version,omitempty"`
	OSName      string  `json:"os_name"`
	OSVersion   string  `json:"os_version"`
	DeviceModel string  `json:"device_model"`
	DeviceID    string  `json:"device_id"`
	NetworkType *string `json:"network_type,omitempty"`
	Locale      string  `json:"locale"`
	Timezone    string  `json:"timezone"`
	SDKVersion  string  `json:"sdk_version"`
}

// IngestEvent is the wire-inbound event shape.
type IngestEvent struct {
	EventID         uuid.UUID       `json:"event_id"`
	EventName       string          `json:"event_name"`
	EventType       Type            `json:"event_type"`
	UserID          *string         `json:"user_id,omitempty"`
	AnonymousID     string          `json:"anonymous_id"`
	MobileNumber    *string         `json:"mobile_number,omitempty"`
	Email           *string         `json:"email,omitempty"`
	ClientTimestamp time.Time       `json:"client_timestamp"`
	Properties      json.RawMessage `json:"properties,omitempty"`
	Context         DeviceContext   `json:"context"`
}

// EnrichedEvent is an IngestEvent stamped with the project it was admitted
// under and the instant the edge admitted it. ServerTimestamp never changes
// downstream and is the sole dedup tiebreaker in the columnar store.
type EnrichedEvent struct {
	IngestEvent
	ProjectID       uuid.UUID `json:"project_id"`
	ServerTimestamp time.Time `json:"server_timestamp"`
}

// BatchRequest is the POST /v1/events/batch body.
type BatchRequest struct {
	Batch  []IngestEvent `json:"batch"`
	SentAt time.Time     `json:"sent_at"`
}

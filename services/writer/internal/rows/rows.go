// Package rows projects enriched events onto the flat row shape the
// columnar store ingests.
package rows

import (
	"encoding/json"
	"time"

	"github.com/truesight/shared-go/eventmodel"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// EventRow is the JSONEachRow-encodable row inserted into the events table.
type EventRow struct {
	ProjectID       string `json:"project_id"`
	EventID         string `json:"event_id"`
	EventName       string `json:"event_name"`
	EventType       string `json:"event_type"`
	UserID          string `json:"user_id"`
	AnonymousID     string `json:"anonymous_id"`
	MobileNumber    string `json:"mobile_number"`
	Email           string `json:"email"`
	ClientTimestamp string `json:"client_timestamp"`
	ServerTimestamp string `json:"server_timestamp"`
	Properties      string `json:"properties"`

	AppVersion  string `json:"app_version"`
	OSName      string `json:"os_name"`
	OSVersion   string `json:"os_version"`
	DeviceModel string `json:"device_model"`
	DeviceID    string `json:"device_id"`
	NetworkType string `json:"network_type"`
	Locale      string `json:"locale"`
	Timezone    string `json:"timezone"`
	SDKVersion  string `json:"sdk_version"`
}

// Project converts an EnrichedEvent to its flat row form. Optional pointer
// fields render as empty strings when absent, matching the storage layer's
// convention of never persisting nulls for these columns.
func Project(e *eventmodel.EnrichedEvent) EventRow {
	row := EventRow{
		ProjectID:       e.ProjectID.String(),
		EventID:         e.EventID.String(),
		EventName:       e.EventName,
		EventType:       e.EventType.String(),
		AnonymousID:     e.AnonymousID,
		ClientTimestamp: formatTimestamp(e.ClientTimestamp),
		ServerTimestamp: formatTimestamp(e.ServerTimestamp),

		OSName:      e.Context.OSName,
		OSVersion:   e.Context.OSVersion,
		DeviceModel: e.Context.DeviceModel,
		DeviceID:    e.Context.DeviceID,
		Locale:      e.Context.Locale,
		Timezone:    e.Context.Timezone,
		SDKVersion:  e.Context.SDKVersion,
	}

	if e.UserID != nil {
		row.UserID = *e.UserID
	}
	if e.MobileNumber != nil {
		row.MobileNumber = *e.MobileNumber
	}
	if e.Email != nil {
		row.Email = *e.Email
	}
	if e.Context.AppVersion != nil {
		row.AppVersion = *e.Context.AppVersion
	}
	if e.Context.NetworkType != nil {
		row.NetworkType = *e.Context.NetworkType
	}
	if len(e.Properties) > 0 {
		row.Properties = string(e.Properties)
	}

	return row
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// MarshalRows renders rows as newline-delimited JSON for a JSONEachRow
// insert body.
func MarshalRows(batch []EventRow) ([]byte, error) {
	var buf []byte
	for _, r := range batch {
		line, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	return buf, nil
}

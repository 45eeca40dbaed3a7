package rows

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truesight/shared-go/eventmodel"
)

func TestProject_FlattensContextAndOptionalFields(t *testing.T) {
	userID := "user-1"
	mobile := "5551234567"
	appVersion := "2.3.1"

	e := &eventmodel.EnrichedEvent{
		IngestEvent: eventmodel.IngestEvent{
			EventID:         uuid.New(),
			EventName:       "checkout_completed",
			EventType:       eventmodel.Track,
			UserID:          &userID,
			AnonymousID:     "anon-1",
			MobileNumber:    &mobile,
			ClientTimestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Context: eventmodel.DeviceContext{
				AppVersion:  &appVersion,
				OSName:      "android",
				OSVersion:   "14",
				DeviceModel: "Pixel8",
				DeviceID:    "dev-1",
				Locale:      "en-US",
				Timezone:    "UTC",
				SDKVersion:  "3.0.0",
			},
		},
		ProjectID:       uuid.New(),
		ServerTimestamp: time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC),
	}

	row := Project(e)

	assert.Equal(t, "checkout_completed", row.EventName)
	assert.Equal(t, "track", row.EventType)
	assert.Equal(t, "user-1", row.UserID)
	assert.Equal(t, "5551234567", row.MobileNumber)
	assert.Equal(t, "2.3.1", row.AppVersion)
	assert.Equal(t, "android", row.OSName)
	assert.Equal(t, "2026-01-02 03:04:05.000", row.ClientTimestamp)
	assert.Equal(t, "2026-01-02 03:04:06.000", row.ServerTimestamp)
	assert.Empty(t, row.Email)
	assert.Empty(t, row.NetworkType)
}

func TestMarshalRows_EmitsOneJSONLinePerRow(t *testing.T) {
	batch := []EventRow{{EventID: "a"}, {EventID: "b"}}
	out, err := MarshalRows(batch)
	require.NoError(t, err)
	assert.Equal(t, 2, countNewlines(out))
}

func countNewlines(b []byte) int {
	n := 0
	for _, c := range b {
		if c == '\n' {
			n++
		}
	}
	return n
}

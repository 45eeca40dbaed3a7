package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truesight/shared-go/eventmodel"
)

func TestEscapeCH_EscapesBackslashAndQuote(t *testing.T) {
	assert.Equal(t, `O\'Brien`, escapeCH(`O'Brien`))
	assert.Equal(t, `a\\b`, escapeCH(`a\b`))
	assert.Equal(t, "plain", escapeCH("plain"))
}

func TestResolve_NoopForNonIdentifyEvent(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	r := New(server.URL, "truesight", "", "")
	userID := "user-1"
	err := r.Resolve(context.Background(), &eventmodel.EnrichedEvent{
		IngestEvent: eventmodel.IngestEvent{EventType: eventmodel.Track, UserID: &userID},
	})

	require.NoError(t, err)
	assert.False(t, called)
}

func TestResolve_NoopForIdentifyWithoutUserID(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	r := New(server.URL, "truesight", "", "")
	err := r.Resolve(context.Background(), &eventmodel.EnrichedEvent{
		IngestEvent: eventmodel.IngestEvent{EventType: eventmodel.Identify},
	})

	require.NoError(t, err)
	assert.False(t, called)
}

func TestResolve_UpsertsIdentifyEventWithEscapedLiterals(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := New(server.URL, "truesight", "", "")
	userID := "o'brien"
	err := r.Resolve(context.Background(), &eventmodel.EnrichedEvent{
		IngestEvent: eventmodel.IngestEvent{
			EventType:   eventmodel.Identify,
			UserID:      &userID,
			AnonymousID: "anon-1",
		},
		ProjectID: uuid.New(),
	})

	require.NoError(t, err)
	assert.Contains(t, gotQuery, "INSERT INTO user_identity_map")
	assert.Contains(t, gotQuery, `o\'brien`)
}

func TestResolve_ReturnsErrorOnNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := New(server.URL, "truesight", "", "")
	userID := "user-1"
	err := r.Resolve(context.Background(), &eventmodel.EnrichedEvent{
		IngestEvent: eventmodel.IngestEvent{EventType: eventmodel.Identify, UserID: &userID},
	})

	assert.Error(t, err)
}

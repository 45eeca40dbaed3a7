package inserter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truesight/services/writer/internal/rows"
)

func TestInsertBatch_NoopOnEmptyBatch(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	ins := New(server.URL, "truesight", "", "", "events")
	err := ins.InsertBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.EqualValues(t, 0, calls)
}

func TestInsertBatch_SendsJSONEachRowQueryAndSucceeds(t *testing.T) {
	var gotQuery, gotDatabase string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotDatabase = r.URL.Query().Get("database")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ins := New(server.URL, "truesight", "", "", "events")
	err := ins.InsertBatch(context.Background(), []rows.EventRow{{ProjectID: "p1", EventID: "e1"}})

	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO events FORMAT JSONEachRow", gotQuery)
	assert.Equal(t, "truesight", gotDatabase)
}

func TestInsertBatch_RetriesThenSucceeds(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ins := New(server.URL, "truesight", "", "", "events")
	err := ins.InsertBatch(context.Background(), []rows.EventRow{{ProjectID: "p1"}})

	require.NoError(t, err)
	assert.EqualValues(t, 3, attempts)
}

func TestInsertBatch_FailsAfterMaxAttempts(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ins := New(server.URL, "truesight", "", "", "events")
	err := ins.InsertBatch(context.Background(), []rows.EventRow{{ProjectID: "p1"}})

	require.Error(t, err)
	assert.EqualValues(t, maxAttempts, attempts)
}

func TestInsertBatch_SendsBasicAuthWhenUserSet(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ins := New(server.URL, "truesight", "writer", "s3cret", "events")
	err := ins.InsertBatch(context.Background(), []rows.EventRow{{ProjectID: "p1"}})

	require.NoError(t, err)
	assert.True(t, gotOK)
	assert.Equal(t, "writer", gotUser)
	assert.Equal(t, "s3cret", gotPass)
}

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdDecode_PassesThroughWithoutContentEncodingHeader(t *testing.T) {
	var gotBody string
	handler := ZstdDecode(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/events/batch", bytes.NewReader([]byte(`{"batch":[]}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, `{"batch":[]}`, gotBody)
}

func TestZstdDecode_DecompressesZstdBody(t *testing.T) {
	encoder, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := encoder.EncodeAll([]byte(`{"batch":[]}`), nil)

	var gotBody string
	var gotEncodingHeader string
	handler := ZstdDecode(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotEncodingHeader = r.Header.Get("Content-Encoding")
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/events/batch", bytes.NewReader(compressed))
	req.Header.Set("Content-Encoding", "zstd")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, `{"batch":[]}`, gotBody)
	assert.Empty(t, gotEncodingHeader)
}

func TestZstdDecode_RejectsOversizedDecompressedBody(t *testing.T) {
	encoder, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	oversized := bytes.Repeat([]byte("a"), ZstdMaxDecompressedBytes+1)
	compressed := encoder.EncodeAll(oversized, nil)

	handler := ZstdDecode(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/events/batch", bytes.NewReader(compressed))
	req.Header.Set("Content-Encoding", "zstd")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestZstdDecode_RejectsMalformedZstdBody(t *testing.T) {
	handler := ZstdDecode(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/events/batch", bytes.NewReader([]byte("not zstd")))
	req.Header.Set("Content-Encoding", "zstd")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

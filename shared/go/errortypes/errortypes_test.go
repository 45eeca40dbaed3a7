package errortypes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_RendersNestedEnvelopeWithMatchingStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, New(CodeRateLimited, "too many requests", WithRequestID("req-1")))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(CodeRateLimited), body.Error.Code)
	assert.Equal(t, "too many requests", body.Error.Message)
}

func TestFrom_PassesThroughExistingError(t *testing.T) {
	original := New(CodeNotFound, "missing")
	assert.Same(t, original, From(original))
}

func TestFrom_WrapsUnknownErrorAsInternal(t *testing.T) {
	wrapped := From(assertAnError{})
	assert.Equal(t, CodeInternal, wrapped.Code)
}

type assertAnError struct{}

func (assertAnError) Error() string { return "boom" }

func TestHTTPStatus_DefaultsToInternalServerErrorForUnknownCode(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Code("SOMETHING_ELSE")))
}

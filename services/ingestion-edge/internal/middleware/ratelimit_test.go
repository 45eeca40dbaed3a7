package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/truesight/shared-go/ratelimit"
)

func TestRateLimit_AllowsThenRejectsOverBurst(t *testing.T) {
	registry := ratelimit.NewRegistry(1, 1)
	handler := RateLimit(registry)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ctx := context.WithValue(context.Background(), projectIDKey, "project-a")

	req1 := httptest.NewRequest(http.MethodPost, "/v1/events/batch", nil).WithContext(ctx)
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/v1/events/batch", nil).WithContext(ctx)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.NotEmpty(t, rec2.Header().Get("Retry-After"))
}

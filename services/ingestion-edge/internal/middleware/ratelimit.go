package middleware

import (
	"net/http"
	"strconv"

	"github.com/truesight/shared-go/errortypes"
	"github.com/truesight/shared-go/ratelimit"
)

// RateLimit enforces a per-project token bucket. It must run after
// APIKeyAuth, since it keys off the project ID that middleware injects.
func RateLimit(registry *ratelimit.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			projectID := ProjectIDFromContext(r.Context())

			allowed, retryAfter := registry.Allow(projectID)
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				errortypes.WriteJSON(w, errortypes.New(errortypes.CodeRateLimited, "rate limit exceeded",
					errortypes.WithRequestID(RequestIDFromContext(r.Context()))))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

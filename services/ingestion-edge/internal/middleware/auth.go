package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/truesight/shared-go/errortypes"

	"github.com/truesight/services/ingestion-edge/internal/credstore"
)

const projectIDKey contextKey = "project_id"

// ProjectIDFromContext returns the authenticated project ID stashed by
// APIKeyAuth, or "" if the request never passed authentication.
func ProjectIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(projectIDKey).(string)
	return id
}

// APIKeyAuth resolves the X-API-Key header against store and injects the
// resolved project ID into the request context. It must run before any
// middleware keyed on the project, such as rate limiting.
func APIKeyAuth(store *credstore.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := RequestIDFromContext(r.Context())

			key := r.Header.Get("X-API-Key")
			if key == "" {
				errortypes.WriteJSON(w, errortypes.New(errortypes.CodeUnauthorized, "missing X-API-Key header",
					errortypes.WithRequestID(reqID)))
				return
			}

			projectID, err := store.Resolve(r.Context(), key)
			if err != nil {
				if errors.Is(err, credstore.ErrNoMatch) {
					errortypes.WriteJSON(w, errortypes.New(errortypes.CodeUnauthorized, "invalid api key",
						errortypes.WithRequestID(reqID)))
					return
				}
				errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to resolve api key",
					errortypes.WithRequestID(reqID)))
				return
			}

			ctx := context.WithValue(r.Context(), projectIDKey, projectID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

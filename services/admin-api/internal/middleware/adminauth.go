// Package middleware implements the admin API's Bearer-token guard.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/truesight/shared-go/errortypes"
)

// AdminAuth requires a Bearer token matching token on every request.
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				errortypes.WriteJSON(w, errortypes.New(errortypes.CodeUnauthorized, "missing or invalid admin token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package handlers

import (
	"net/http"

	"github.com/truesight/shared-go/dataaccess"
)

// Health wraps the shared liveness-probe registry as an http.Handler.
func Health(registry *dataaccess.Registry) http.HandlerFunc {
	return registry.Handler()
}

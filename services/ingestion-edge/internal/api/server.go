// Package api assembles the chi router and middleware chain for the
// ingestion edge.
package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/truesight/shared-go/credentials"
	"github.com/truesight/shared-go/dataaccess"
	"github.com/truesight/shared-go/errortypes"
	"github.com/truesight/shared-go/queue"
	"github.com/truesight/shared-go/ratelimit"

	"github.com/truesight/services/ingestion-edge/internal/credstore"
	"github.com/truesight/services/ingestion-edge/internal/handlers"
	imiddleware "github.com/truesight/services/ingestion-edge/internal/middleware"
)

// Deps are the constructed dependencies the router wires into handlers.
type Deps struct {
	DB             *sql.DB
	Queue          *queue.Client
	QueueURL       string
	KeyCache       *credentials.KeyCache
	CacheTTLSecs   int
	RateLimiter    *ratelimit.Registry
	HealthRegistry *dataaccess.Registry
	Logger         *zap.Logger
}

// NewRouter builds the full ingestion-edge HTTP routing tree. Middleware
// order matters: Recoverer and RequestID wrap everything, and inside the
// /v1 group zstd decoding runs first so the body is plaintext before
// anything else inspects it, then API-key auth resolves the
// project, then rate limiting enforces per-project quota using that
// resolved project.
func NewRouter(deps Deps) http.Handler {
	store := credstore.New(deps.DB, deps.KeyCache, time.Duration(deps.CacheTTLSecs)*time.Second)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(imiddleware.RequestID)

	r.Get("/health", handlers.Health(deps.HealthRegistry))

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(imiddleware.ZstdDecode)
		v1.Use(imiddleware.APIKeyAuth(store))
		v1.Use(imiddleware.RateLimit(deps.RateLimiter))

		v1.Post("/events/batch", (&handlers.IngestHandler{
			Queue:    deps.Queue,
			QueueURL: deps.QueueURL,
			Logger:   deps.Logger,
		}).ServeHTTP)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeNotFound, "resource not found"))
	})

	return r
}

// Package api assembles the admin API's chi router.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/truesight/shared-go/dataaccess"
	"github.com/truesight/shared-go/errortypes"

	"github.com/truesight/services/admin-api/internal/handlers"
	"github.com/truesight/services/admin-api/internal/middleware"
	"github.com/truesight/services/admin-api/internal/storage"
)

// Deps are the constructed dependencies the router wires into handlers.
type Deps struct {
	DB             *sql.DB
	AdminToken     string
	HealthRegistry *dataaccess.Registry
}

// NewRouter builds the admin API's routing tree: an unauthenticated health
// check and a Bearer-guarded /v1 surface for project, API key, and stats
// operations.
func NewRouter(deps Deps) http.Handler {
	projectStore := storage.NewProjectStore(deps.DB)
	apiKeyStore := storage.NewAPIKeyStore(deps.DB)

	projectsHandler := &handlers.Projects{Store: projectStore, APIKeys: apiKeyStore}
	apiKeysHandler := &handlers.APIKeys{Store: apiKeyStore}
	statsHandler := &handlers.Stats{Projects: projectStore}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Get("/health", handlers.Health(deps.HealthRegistry))

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.AdminAuth(deps.AdminToken))

		v1.Route("/projects", func(p chi.Router) {
			p.Get("/", projectsHandler.List)
			p.Post("/", projectsHandler.Create)

			p.Route("/{projectID}", func(pid chi.Router) {
				pid.Get("/", projectsHandler.Get)
				pid.Patch("/", projectsHandler.Update)
				pid.Delete("/", projectsHandler.Delete)

				pid.Route("/api-keys", func(k chi.Router) {
					k.Get("/", apiKeysHandler.List)
					k.Post("/", apiKeysHandler.Generate)
					k.Delete("/{keyID}", apiKeysHandler.Revoke)
				})
			})
		})

		v1.Get("/stats/projects/{projectID}/throughput", statsHandler.Throughput)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeNotFound, "resource not found"))
	})

	return r
}

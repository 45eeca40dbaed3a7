package handlers

import (
	"net/http"

	"github.com/truesight/shared-go/errortypes"

	"github.com/truesight/services/admin-api/internal/storage"
)

// Stats serves the read-only aggregation endpoints under
// /v1/stats/projects/{projectID}/... No columnar-store query is issued
// here; Throughput is a stub that proves the route exists and validates
// its project reference without executing an analytical query.
type Stats struct {
	Projects *storage.ProjectStore
}

type throughputResponse struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message"`
}

// Throughput handles GET /v1/stats/projects/{projectID}/throughput.
func (h *Stats) Throughput(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	if _, err := h.Projects.Get(r.Context(), projectID); err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeNotFound, "project not found"))
		return
	}

	writeJSON(w, http.StatusOK, throughputResponse{
		ProjectID: projectID.String(),
		Message:   "aggregation queries are served directly against the columnar store",
	})
}

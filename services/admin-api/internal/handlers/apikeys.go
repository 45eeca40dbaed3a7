package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/truesight/shared-go/credentials"
	"github.com/truesight/shared-go/errortypes"

	"github.com/truesight/services/admin-api/internal/storage"
)

// APIKeys serves API key lifecycle operations under
// /v1/projects/{projectID}/api-keys.
type APIKeys struct {
	Store *storage.APIKeyStore
}

type apiKeyResponse struct {
	ID          string `json:"id"`
	ProjectID   string `json:"project_id"`
	Prefix      string `json:"prefix"`
	Label       string `json:"label"`
	Environment string `json:"environment"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
}

func toAPIKeyResponse(k *storage.APIKey) apiKeyResponse {
	return apiKeyResponse{
		ID:          k.ID.String(),
		ProjectID:   k.ProjectID.String(),
		Prefix:      k.Prefix,
		Label:       k.Label,
		Environment: k.Environment,
		Active:      k.Active,
		CreatedAt:   k.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// List handles GET /v1/projects/{projectID}/api-keys.
func (h *APIKeys) List(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	keys, err := h.Store.ListByProject(r.Context(), projectID)
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to list api keys"))
		return
	}

	data := make([]apiKeyResponse, 0, len(keys))
	for i := range keys {
		data = append(data, toAPIKeyResponse(&keys[i]))
	}
	writeJSON(w, http.StatusOK, data)
}

type generateAPIKeyRequest struct {
	Label       string `json:"label"`
	Environment string `json:"environment"`
}

type generateAPIKeyResponse struct {
	apiKeyResponse
	Key string `json:"key"`
}

// Generate handles POST /v1/projects/{projectID}/api-keys. The plaintext
// key is returned exactly once; only its prefix and hash persist.
func (h *APIKeys) Generate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	var req generateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "malformed request body"))
		return
	}
	if req.Environment != "live" && req.Environment != "test" {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "environment must be 'live' or 'test'"))
		return
	}

	exists, err := h.Store.ProjectExists(r.Context(), projectID)
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to verify project"))
		return
	}
	if !exists {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeNotFound, "project not found"))
		return
	}

	fullKey, prefix, err := credentials.GenerateAPIKey(req.Environment)
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeInternal, "failed to generate api key"))
		return
	}

	hash, err := credentials.HashAPIKey(fullKey)
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeInternal, "failed to hash api key"))
		return
	}

	k, err := h.Store.Create(r.Context(), projectID, prefix, hash, req.Label, req.Environment)
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to store api key"))
		return
	}

	writeJSON(w, http.StatusCreated, generateAPIKeyResponse{
		apiKeyResponse: toAPIKeyResponse(k),
		Key:            fullKey,
	})
}

// Revoke handles DELETE /v1/projects/{projectID}/api-keys/{keyID}.
func (h *APIKeys) Revoke(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	keyID, err := uuid.Parse(chi.URLParam(r, "keyID"))
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "invalid api key id"))
		return
	}

	if err := h.Store.Revoke(r.Context(), projectID, keyID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errortypes.WriteJSON(w, errortypes.New(errortypes.CodeNotFound, "api key not found"))
			return
		}
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to revoke api key"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

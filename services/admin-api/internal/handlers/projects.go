// Package handlers implements the admin API's HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/truesight/shared-go/errortypes"

	"github.com/truesight/services/admin-api/internal/storage"
)

// Projects serves project CRUD under /v1/projects.
type Projects struct {
	Store   *storage.ProjectStore
	APIKeys *storage.APIKeyStore
}

type projectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toProjectResponse(p *storage.Project) projectResponse {
	return projectResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Active:    p.Active,
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

type paginationMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

type paginatedProjects struct {
	Data []projectResponse `json:"data"`
	Meta paginationMeta     `json:"meta"`
}

// List handles GET /v1/projects.
func (h *Projects) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		page = v
	}
	perPage := 20
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil {
		perPage = v
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > 100 {
		perPage = 100
	}

	var active *bool
	if v := q.Get("active"); v != "" {
		b := v == "true"
		active = &b
	}

	projects, total, err := h.Store.List(r.Context(), storage.ListParams{Active: active, Page: page, PerPage: perPage})
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to list projects"))
		return
	}

	data := make([]projectResponse, 0, len(projects))
	for i := range projects {
		data = append(data, toProjectResponse(&projects[i]))
	}

	writeJSON(w, http.StatusOK, paginatedProjects{
		Data: data,
		Meta: paginationMeta{Page: page, PerPage: perPage, Total: total},
	})
}

// Get handles GET /v1/projects/{id}.
func (h *Projects) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	p, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeNotFound, "project not found"))
		return
	}
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to fetch project"))
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

type createProjectRequest struct {
	Name string `json:"name"`
}

// Create handles POST /v1/projects.
func (h *Projects) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "name is required"))
		return
	}

	p, err := h.Store.Create(r.Context(), req.Name)
	if errors.Is(err, storage.ErrNameTaken) {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "project name already in use"))
		return
	}
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to create project"))
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(p))
}

type updateProjectRequest struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Update handles PATCH /v1/projects/{id}.
func (h *Projects) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "malformed request body"))
		return
	}

	p, err := h.Store.Update(r.Context(), id, storage.Update{Name: req.Name, Active: req.Active})
	if errors.Is(err, storage.ErrNotFound) {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeNotFound, "project not found"))
		return
	}
	if errors.Is(err, storage.ErrNameTaken) {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "project name already in use"))
		return
	}
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to update project"))
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

// Delete handles DELETE /v1/projects/{id}: soft-deletes the project and
// cascades a bulk revoke of its keys.
func (h *Projects) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProjectID(w, r)
	if !ok {
		return
	}

	if err := h.Store.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			errortypes.WriteJSON(w, errortypes.New(errortypes.CodeNotFound, "project not found"))
			return
		}
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to delete project"))
		return
	}

	if err := h.APIKeys.RevokeAllForProject(r.Context(), id); err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeDatabase, "failed to revoke project keys"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseProjectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		errortypes.WriteJSON(w, errortypes.New(errortypes.CodeValidation, "invalid project id"))
		return uuid.UUID{}, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

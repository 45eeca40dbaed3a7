package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truesight/services/admin-api/internal/storage"
)

func requestWithProjectID(method, path string, body []byte, projectID string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("projectID", projectID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestProjects_GetReturns404WhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, name, active, created_at, updated_at FROM projects WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	h := &Projects{Store: storage.NewProjectStore(db), APIKeys: storage.NewAPIKeyStore(db)}
	req := requestWithProjectID(http.MethodGet, "/v1/projects/"+id.String(), nil, id.String())
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjects_GetRejectsMalformedProjectID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := &Projects{Store: storage.NewProjectStore(db), APIKeys: storage.NewAPIKeyStore(db)}
	req := requestWithProjectID(http.MethodGet, "/v1/projects/not-a-uuid", nil, "not-a-uuid")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjects_CreateRejectsEmptyName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := &Projects{Store: storage.NewProjectStore(db), APIKeys: storage.NewAPIKeyStore(db)}
	req := httptest.NewRequest(http.MethodPost, "/v1/projects", bytes.NewReader([]byte(`{"name":""}`)))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjects_DeleteReturns404WhenProjectMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE projects SET active = false`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	h := &Projects{Store: storage.NewProjectStore(db), APIKeys: storage.NewAPIKeyStore(db)}
	req := requestWithProjectID(http.MethodDelete, "/v1/projects/"+id.String(), nil, id.String())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

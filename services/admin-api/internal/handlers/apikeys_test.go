package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truesight/services/admin-api/internal/storage"
)

func requestWithProjectAndKeyID(method, path string, body []byte, projectID, keyID string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("projectID", projectID)
	if keyID != "" {
		rctx.URLParams.Add("keyID", keyID)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAPIKeys_GenerateRejectsInvalidEnvironment(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := &APIKeys{Store: storage.NewAPIKeyStore(db)}
	projectID := uuid.New()
	req := requestWithProjectAndKeyID(http.MethodPost, "/v1/projects/"+projectID.String()+"/api-keys",
		[]byte(`{"label":"prod","environment":"staging"}`), projectID.String(), "")
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeys_GenerateReturns404ForUnknownProject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	projectID := uuid.New()
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM projects WHERE id = \$1\)`).
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	h := &APIKeys{Store: storage.NewAPIKeyStore(db)}
	req := requestWithProjectAndKeyID(http.MethodPost, "/v1/projects/"+projectID.String()+"/api-keys",
		[]byte(`{"label":"prod","environment":"live"}`), projectID.String(), "")
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIKeys_GenerateReturnsPlaintextKeyExactlyOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	projectID := uuid.New()
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM projects WHERE id = \$1\)`).
		WithArgs(projectID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO api_keys`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "project_id", "prefix", "key_hash", "label", "environment", "active", "created_at"}).
			AddRow(uuid.New(), projectID, "ts_live_a", "hash", "prod", "live", true, time.Now()))

	h := &APIKeys{Store: storage.NewAPIKeyStore(db)}
	req := requestWithProjectAndKeyID(http.MethodPost, "/v1/projects/"+projectID.String()+"/api-keys",
		[]byte(`{"label":"prod","environment":"live"}`), projectID.String(), "")
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp generateAPIKeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Key)
	assert.Contains(t, resp.Key, "ts_live_")
}

func TestAPIKeys_RevokeRejectsInvalidKeyID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := &APIKeys{Store: storage.NewAPIKeyStore(db)}
	projectID := uuid.New()
	req := requestWithProjectAndKeyID(http.MethodDelete, "/v1/projects/"+projectID.String()+"/api-keys/not-a-uuid",
		nil, projectID.String(), "not-a-uuid")
	rec := httptest.NewRecorder()
	h.Revoke(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

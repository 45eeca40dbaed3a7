package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truesight/services/admin-api/internal/storage"
)

func TestStats_ThroughputReturns404ForUnknownProject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, name, active, created_at, updated_at FROM projects WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active", "created_at", "updated_at"}))

	h := &Stats{Projects: storage.NewProjectStore(db)}
	req := requestWithProjectID(http.MethodGet, "/v1/stats/projects/"+id.String()+"/throughput", nil, id.String())
	rec := httptest.NewRecorder()
	h.Throughput(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

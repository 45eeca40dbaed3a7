package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStore_GetReturnsErrNotFoundOnNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, name, active, created_at, updated_at FROM projects WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	store := NewProjectStore(db)
	_, err = store.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectStore_GetReturnsProject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, active, created_at, updated_at FROM projects WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active", "created_at", "updated_at"}).
			AddRow(id, "acme", true, now, now))

	store := NewProjectStore(db)
	p, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "acme", p.Name)
	assert.True(t, p.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectStore_CreateMapsUniqueViolationToErrNameTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs("acme").
		WillReturnError(errors.New(`duplicate key value violates unique constraint "projects_name_key"`))

	store := NewProjectStore(db)
	_, err = store.Create(context.Background(), "acme")
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestProjectStore_SoftDeleteReturnsErrNotFoundWhenNoRowsAffected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE projects SET active = false`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewProjectStore(db)
	err = store.SoftDelete(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectStore_SoftDeleteSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec(`UPDATE projects SET active = false`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewProjectStore(db)
	err = store.SoftDelete(context.Background(), id)
	assert.NoError(t, err)
}

func TestProjectStore_ListAppliesActiveFilterAndPagination(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	active := true
	mock.ExpectQuery(`SELECT count\(\*\) FROM projects WHERE active = \$1`).
		WithArgs(active).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, active, created_at, updated_at FROM projects WHERE active = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs(active, 10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active", "created_at", "updated_at"}).
			AddRow(id, "acme", true, now, now))

	store := NewProjectStore(db)
	projects, total, err := store.List(context.Background(), ListParams{Active: &active, Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, projects, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

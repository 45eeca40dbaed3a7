// Package storage implements the admin API's Postgres-backed persistence
// for projects and API keys.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrNameTaken indicates a unique-constraint violation on project name.
var ErrNameTaken = errors.New("storage: project name already in use")

// Project mirrors the projects table.
type Project struct {
	ID        uuid.UUID
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectStore persists Project rows.
type ProjectStore struct {
	db *sql.DB
}

// NewProjectStore constructs a ProjectStore.
func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

// ListParams filters and paginates a project listing.
type ListParams struct {
	Active  *bool
	Page    int
	PerPage int
}

// List returns a page of projects and the total matching count.
func (s *ProjectStore) List(ctx context.Context, params ListParams) ([]Project, int, error) {
	where := ""
	args := []any{}
	if params.Active != nil {
		where = "WHERE active = $1"
		args = append(args, *params.Active)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT count(*) FROM projects %s", where)
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	offset := (params.Page - 1) * params.PerPage
	limitArgPos := len(args) + 1
	offsetArgPos := len(args) + 2
	query := fmt.Sprintf(
		"SELECT id, name, active, created_at, updated_at FROM projects %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, limitArgPos, offsetArgPos,
	)
	args = append(args, params.PerPage, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, total, rows.Err()
}

// Get fetches a single project by ID.
func (s *ProjectStore) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, active, created_at, updated_at FROM projects WHERE id = $1", id,
	).Scan(&p.ID, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// Create inserts a new active project.
func (s *ProjectStore) Create(ctx context.Context, name string) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO projects (id, name, active, created_at, updated_at) VALUES (gen_random_uuid(), $1, true, now(), now()) RETURNING id, name, active, created_at, updated_at",
		name,
	).Scan(&p.ID, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil && isUniqueViolation(err) {
		return nil, ErrNameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

// Update struct carries optional fields to update.
type Update struct {
	Name   *string
	Active *bool
}

// Update modifies a project's mutable fields.
func (s *ProjectStore) Update(ctx context.Context, id uuid.UUID, upd Update) (*Project, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	pos := 1

	if upd.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", pos))
		args = append(args, *upd.Name)
		pos++
	}
	if upd.Active != nil {
		sets = append(sets, fmt.Sprintf("active = $%d", pos))
		args = append(args, *upd.Active)
		pos++
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE projects SET %s WHERE id = $%d RETURNING id, name, active, created_at, updated_at",
		strings.Join(sets, ", "), pos,
	)

	var p Project
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil && isUniqueViolation(err) {
		return nil, ErrNameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &p, nil
}

// SoftDelete flips active=false. Callers are responsible for cascading a
// bulk key revoke.
func (s *ProjectStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "UPDATE projects SET active = false, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("soft delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete project: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "duplicate")
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// APIKey mirrors the api_keys table. KeyHash is exported for scanning but
// is not included in any admin API response.
type APIKey struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	Prefix      string
	KeyHash     string
	Label       string
	Environment string
	Active      bool
	CreatedAt   time.Time
}

// APIKeyStore persists APIKey rows.
type APIKeyStore struct {
	db *sql.DB
}

// NewAPIKeyStore constructs an APIKeyStore.
func NewAPIKeyStore(db *sql.DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

// ListByProject returns every key (active or not) for a project.
func (s *APIKeyStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, project_id, prefix, key_hash, label, environment, active, created_at FROM api_keys WHERE project_id = $1 ORDER BY created_at DESC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.ID, &k.ProjectID, &k.Prefix, &k.KeyHash, &k.Label, &k.Environment, &k.Active, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Create inserts a new API key row.
func (s *APIKeyStore) Create(ctx context.Context, projectID uuid.UUID, prefix, keyHash, label, environment string) (*APIKey, error) {
	var k APIKey
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO api_keys (id, project_id, prefix, key_hash, label, environment, active, created_at)
		 VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, true, now())
		 RETURNING id, project_id, prefix, key_hash, label, environment, active, created_at`,
		projectID, prefix, keyHash, label, environment,
	).Scan(&k.ID, &k.ProjectID, &k.Prefix, &k.KeyHash, &k.Label, &k.Environment, &k.Active, &k.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return &k, nil
}

// Revoke flips a single key's active flag to false. Returns ErrNotFound if
// no row matches projectID/keyID.
func (s *APIKeyStore) Revoke(ctx context.Context, projectID, keyID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE api_keys SET active = false WHERE id = $1 AND project_id = $2", keyID, projectID,
	)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RevokeAllForProject deactivates every key for a project, used when a
// project is soft-deleted.
func (s *APIKeyStore) RevokeAllForProject(ctx context.Context, projectID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "UPDATE api_keys SET active = false WHERE project_id = $1", projectID)
	if err != nil {
		return fmt.Errorf("revoke all api keys for project: %w", err)
	}
	return nil
}

// ProjectExists checks whether a project row exists at all (active or
// not), used to validate key-creation requests.
func (s *APIKeyStore) ProjectExists(ctx context.Context, projectID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)", projectID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check project exists: %w", err)
	}
	return exists, nil
}

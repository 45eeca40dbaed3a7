// Package credstore resolves API keys to project IDs against Postgres,
// fronted by the in-memory KeyCache so steady-state traffic never touches
// the database.
package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/truesight/shared-go/credentials"
)

// ErrNoMatch is returned when no active key candidate verifies.
var ErrNoMatch = errors.New("credstore: no matching active api key")

// candidate is a row from api_keys sharing the lookup prefix.
type candidate struct {
	projectID string
	keyHash   string
}

// Store resolves raw API keys to project IDs, caching successful
// resolutions for cacheTTL.
type Store struct {
	db       *sql.DB
	cache    *credentials.KeyCache
	cacheTTL time.Duration
}

// New constructs a Store backed by db and cache.
func New(db *sql.DB, cache *credentials.KeyCache, cacheTTL time.Duration) *Store {
	return &Store{db: db, cache: cache, cacheTTL: cacheTTL}
}

// Resolve returns the project ID an API key is active under. On a cache
// miss it looks up every active key sharing the key's 8-character prefix
// and Argon2-verifies each candidate in turn; the first match wins and is
// cached. Zero matches returns ErrNoMatch.
func (s *Store) Resolve(ctx context.Context, rawKey string) (string, error) {
	if projectID, ok := s.cache.Get(rawKey); ok {
		return projectID, nil
	}

	if len(rawKey) < 8 {
		return "", ErrNoMatch
	}
	prefix := rawKey[:8]

	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, key_hash FROM api_keys WHERE prefix = $1 AND active = true`,
		prefix,
	)
	if err != nil {
		return "", fmt.Errorf("query api_keys by prefix: %w", err)
	}
	defer rows.Close()

	var candidates []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.projectID, &c.keyHash); err != nil {
			return "", fmt.Errorf("scan api_keys row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate api_keys rows: %w", err)
	}

	for _, c := range candidates {
		ok, err := credentials.VerifyAPIKey(rawKey, c.keyHash)
		if err != nil {
			continue
		}
		if ok {
			s.cache.Insert(rawKey, c.projectID, s.cacheTTL)
			return c.projectID, nil
		}
	}

	return "", ErrNoMatch
}

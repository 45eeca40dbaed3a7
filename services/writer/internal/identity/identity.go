// Package identity maintains the anonymous-to-known user identity mapping
// side table, stitched from successfully inserted Identify events.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/truesight/shared-go/eventmodel"
)

// Resolver issues single-row upserts into user_identity_map over the same
// HTTP insert interface the columnar inserter uses.
type Resolver struct {
	baseURL  string
	database string
	user     string
	password string
	client   *http.Client
}

// New constructs a Resolver targeting database at baseURL.
func New(baseURL, database, user, password string) *Resolver {
	return &Resolver{
		baseURL:  baseURL,
		database: database,
		user:     user,
		password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve upserts a project/anonymous/user mapping for e if it is an
// Identify event with a non-empty UserID; every other event is a no-op.
// Failures are the caller's responsibility to log and swallow — identity
// stitching must never block event durability.
func (r *Resolver) Resolve(ctx context.Context, e *eventmodel.EnrichedEvent) error {
	if e.EventType != eventmodel.Identify {
		return nil
	}
	if e.UserID == nil || *e.UserID == "" {
		return nil
	}

	ts := e.ServerTimestamp.UTC().Format("2006-01-02 15:04:05.000")

	query := fmt.Sprintf(
		"INSERT INTO user_identity_map (project_id, anonymous_id, user_id, first_seen, last_seen) VALUES ('%s', '%s', '%s', '%s', '%s')",
		escapeCH(e.ProjectID.String()),
		escapeCH(e.AnonymousID),
		escapeCH(*e.UserID),
		ts,
		ts,
	)

	return r.exec(ctx, query)
}

func (r *Resolver) exec(ctx context.Context, query string) error {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return fmt.Errorf("parse clickhouse url: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("database", r.database)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build identity upsert request: %w", err)
	}
	if r.user != "" {
		req.SetBasicAuth(r.user, r.password)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity upsert request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("identity upsert failed with status %d", resp.StatusCode)
	}
	return nil
}

// escapeCH escapes backslash and single-quote characters for inline SQL
// string literals.
func escapeCH(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}

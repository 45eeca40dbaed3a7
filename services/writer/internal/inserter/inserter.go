// Package inserter writes projected rows into the columnar store over its
// HTTP JSONEachRow insert interface, retrying transient failures with
// exponential backoff.
package inserter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/truesight/services/writer/internal/rows"
)

const maxAttempts = 3

// Inserter issues INSERT INTO <table> FORMAT JSONEachRow statements over
// plain HTTP, matching the columnar store's native HTTP interface (no
// driver package for this store appears anywhere in the example corpus).
type Inserter struct {
	baseURL  string
	database string
	user     string
	password string
	table    string
	client   *http.Client
}

// New constructs an Inserter targeting table in database at baseURL.
func New(baseURL, database, user, password, table string) *Inserter {
	return &Inserter{
		baseURL:  baseURL,
		database: database,
		user:     user,
		password: password,
		table:    table,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// InsertBatch projects and inserts a batch of rows, making at most
// maxAttempts attempts and waiting 500ms, then 1s, between them; no wait
// follows the final failed attempt. Empty batches are no-ops. The last
// error is returned if every attempt fails.
func (ins *Inserter) InsertBatch(ctx context.Context, batch []rows.EventRow) error {
	if len(batch) == 0 {
		return nil
	}

	body, err := rows.MarshalRows(batch)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(fixedDelaySequence(), maxAttempts-1), ctx)

	var lastErr error
	err = backoff.Retry(func() error {
		lastErr = ins.send(ctx, body)
		return lastErr
	}, policy)
	if err != nil {
		return lastErr
	}
	return nil
}

func (ins *Inserter) send(ctx context.Context, body []byte) error {
	query := fmt.Sprintf("INSERT INTO %s FORMAT JSONEachRow", ins.table)

	u, err := url.Parse(ins.baseURL)
	if err != nil {
		return fmt.Errorf("parse clickhouse url: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("database", ins.database)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build insert request: %w", err)
	}
	if ins.user != "" {
		req.SetBasicAuth(ins.user, ins.password)
	}

	resp, err := ins.client.Do(req)
	if err != nil {
		return fmt.Errorf("insert request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("insert failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// fixedDelaySequence yields 500ms, 1s, 2s and then 2s for every later
// retry (base x 2^attempt, capped at MaxInterval, no jitter). It never
// stops on its own; InsertBatch bounds it with backoff.WithMaxRetries.
func fixedDelaySequence() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

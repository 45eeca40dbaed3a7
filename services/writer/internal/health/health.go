// Package health serves the writer's trivial liveness endpoint.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/truesight/shared-go/dataaccess"
)

// Serve binds and serves the health endpoint on port until ctx is
// canceled, then shuts down gracefully. The writer has no synchronous
// dependency check of its own (unlike the edge, which probes Postgres and
// SQS) — it reports healthy unconditionally, matching the minimal
// liveness probe design of the pipeline it drains for.
func Serve(ctx context.Context, port int, registry *dataaccess.Registry) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", registry.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Package dataaccess provides database connection helpers and the shared
// liveness-probe registry used by every TrueSight service's health endpoint.
package dataaccess

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Probe is a health check function that returns an error on failure.
type Probe func(ctx context.Context) error

// Registry maintains named probes and evaluates them on demand.
type Registry struct {
	mu      sync.RWMutex
	probes  map[string]Probe
	version string
	start   time.Time
}

// NewRegistry initializes an empty registry. version is reported in the
// liveness payload; start marks the instant uptime is measured from.
func NewRegistry(version string) *Registry {
	return &Registry{
		probes:  map[string]Probe{},
		version: version,
		start:   time.Now(),
	}
}

// Register adds a named probe.
func (r *Registry) Register(name string, probe Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes[name] = probe
}

// Status is the liveness payload's shape: overall status plus a flattened
// ok/error string per registered dependency.
type Status struct {
	Status          string            `json:"status"`
	Version         string            `json:"version"`
	UptimeSeconds   int64             `json:"uptime_seconds"`
	Dependencies    map[string]string `json:"dependencies"`
	anyUnhealthy    bool
}

// Evaluate runs every registered probe and aggregates the result.
func (r *Registry) Evaluate(ctx context.Context) Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deps := make(map[string]string, len(r.probes))
	healthy := true
	for name, probe := range r.probes {
		if err := probe(ctx); err != nil {
			deps[name] = "error: " + err.Error()
			healthy = false
		} else {
			deps[name] = "ok"
		}
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}

	return Status{
		Status:        status,
		Version:       r.version,
		UptimeSeconds: int64(time.Since(r.start).Seconds()),
		Dependencies:  deps,
		anyUnhealthy:  !healthy,
	}
}

// Handler returns an HTTP handler emitting the JSON liveness payload: 200
// when every dependency is healthy, 503 otherwise.
func (r *Registry) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		result := r.Evaluate(req.Context())
		code := http.StatusOK
		if result.anyUnhealthy {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(result)
	}
}

// SQLProbe returns a Probe that pings a sql.DB.
func SQLProbe(db *sql.DB) Probe {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthCheckTimeout is the maximum time allowed for the database health
// check, so a slow database cannot block probes indefinitely.
const HealthCheckTimeout = 5 * time.Second

// Pinger checks the availability of the database.
type Pinger interface {
	Healthcheck(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: Is the server process running?
//   - Readiness probe: Is the database reachable?
type HealthHandler struct {
	db        Pinger
	storeType string
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
//
// The db parameter may be nil, in which case the readiness probe reports
// unhealthy.
func NewHealthHandler(db Pinger, storeType string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		storeType: storeType,
		startTime: time.Now(),
	}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK as long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	writeHealthy(w, map[string]any{
		"service":    "tagkeep",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	})
}

// Readiness handles GET /health/ready - readiness probe.
// Returns 200 OK if the database answers a ping.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeUnhealthy(w, "database not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	start := time.Now()
	if err := h.db.Healthcheck(ctx); err != nil {
		writeUnhealthy(w, err.Error())
		return
	}

	writeHealthy(w, map[string]any{
		"database": h.storeType,
		"latency":  time.Since(start).String(),
	})
}

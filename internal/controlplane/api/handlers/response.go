package handlers

import (
	"net/http"
	"time"
)

// Health statuses reported by the probe endpoints.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Response is the body of both health probes.
type Response struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// writeHealthy answers 200 with data attached.
func writeHealthy(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// writeUnhealthy answers 503 with the failure reason.
func writeUnhealthy(w http.ResponseWriter, reason string) {
	WriteJSON(w, http.StatusServiceUnavailable, Response{
		Status:    StatusUnhealthy,
		Timestamp: time.Now().UTC(),
		Error:     reason,
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SessionCounter reports how many harvesting sessions are live
type SessionCounter interface {
	Count(ctx context.Context) (int64, error)
}

// HealthHandler handles health check requests. The database is only checked
// when holdings are served from Postgres.
type HealthHandler struct {
	db       HealthChecker
	cache    HealthChecker
	sessions SessionCounter
	holdings int
}

// NewHealthHandler creates a new health handler; db and cache may be nil
func NewHealthHandler(db, cache HealthChecker, sessions SessionCounter, holdings int) *HealthHandler {
	return &HealthHandler{
		db:       db,
		cache:    cache,
		sessions: sessions,
		holdings: holdings,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string            `json:"status"`
	Timestamp      string            `json:"timestamp"`
	Holdings       int               `json:"holdings"`
	ActiveSessions int64             `json:"active_sessions"`
	Services       map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Holdings:  h.holdings,
		Services:  make(map[string]string),
	}

	if h.holdings == 0 {
		response.Status = "unhealthy"
		response.Services["dataset"] = "unhealthy: no holdings loaded"
	} else {
		response.Services["dataset"] = "healthy"
	}

	// Check database
	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			response.Status = "unhealthy"
			response.Services["database"] = "unhealthy: " + err.Error()
		} else {
			response.Services["database"] = "healthy"
		}
	}

	// Check cache
	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
			response.Services["cache"] = "unhealthy: " + err.Error()
		} else {
			response.Services["cache"] = "healthy"
		}
	}

	if h.sessions != nil {
		if n, err := h.sessions.Count(ctx); err == nil {
			response.ActiveSessions = n
		}
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// Ready handles GET /ready (Kubernetes readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.holdings == 0 {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Live handles GET /live (Kubernetes liveness probe)
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

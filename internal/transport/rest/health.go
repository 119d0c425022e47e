package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type componentCheck struct {
	Healthy    bool   `json:"healthy"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type healthResponse struct {
	Status     string                    `json:"status"`
	CheckedAt  time.Time                 `json:"checked_at"`
	Components map[string]componentCheck `json:"components"`
}

// HealthHandler reports liveness and readiness. Readiness fails when the
// database stops answering, which takes the instance out of rotation before
// requests start erroring.
type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	pingErr := h.db.PingContext(ctx)

	dbCheck := componentCheck{
		Healthy:    pingErr == nil,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if pingErr != nil {
		dbCheck.Error = pingErr.Error()
	}

	resp := healthResponse{
		Status:     "healthy",
		CheckedAt:  time.Now(),
		Components: map[string]componentCheck{"postgres": dbCheck},
	}

	statusCode := http.StatusOK
	if !dbCheck.Healthy {
		resp.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

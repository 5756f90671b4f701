package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DatabaseChecker reports whether the store is reachable.
type DatabaseChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct {
	db      DatabaseChecker
	timeout time.Duration
	logger  zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DatabaseChecker, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		timeout: 2 * time.Second,
		logger:  logger.With().Str("handler", "health").Logger(),
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Live reports that the process is serving.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

// Ready pings the store.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("database health check failed")
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Database: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Database: "ok"})
}

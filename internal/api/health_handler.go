package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/lexiquest/review-api/internal/api/shared"
	"github.com/lexiquest/review-api/internal/platform/logger"
)

// healthCheckTimeout bounds the dependency check behind GET /health.
const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency whose reachability decides health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves GET /health without authentication.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. A nil db reports healthy
// without checking anything.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, logger: logger.With(slog.String("component", "health_handler"))}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			logger.FromContextOrDefault(r.Context(), h.logger).Error("health check failed",
				slog.String("error", err.Error()))
			shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lexiquest/review-api/internal/api/shared"
	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/service/review_session"
)

// ItemHandler serves the vocabulary item scheduling endpoints.
type ItemHandler struct {
	sessions review_session.ReviewSessionService
	logger   *slog.Logger
}

// NewItemHandler creates an ItemHandler.
func NewItemHandler(sessions review_session.ReviewSessionService, logger *slog.Logger) *ItemHandler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil for ItemHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ItemHandler")
	}

	return &ItemHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "item_handler")),
	}
}

// GetDueItems handles GET /api/items/due?limit=N. It returns the items a
// new session would queue, most overdue first.
func (h *ItemHandler) GetDueItems(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := parseLimitQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	items, err := h.sessions.DueItems(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get due items")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dueItemsToResponse(items))
}

// PostponeItem handles POST /api/items/{id}/postpone.
func (h *ItemHandler) PostponeItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return
		}
		log.Warn("invalid postpone request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	state, err := h.sessions.Postpone(r.Context(), userID, itemID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone item")
		return
	}

	log.Debug("item postponed",
		slog.String("item_id", itemID.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, scheduleToResponse(state))
}

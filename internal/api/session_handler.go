package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/api/shared"
	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/service/review_session"
)

// SessionHandler serves the review session endpoints.
type SessionHandler struct {
	sessions review_session.ReviewSessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions review_session.ReviewSessionService, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /api/sessions. The body is optional.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		log.Warn("invalid start session request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	view, err := h.sessions.Start(r.Context(), userID, req.Limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start review session")
		return
	}

	log.Debug("review session started",
		slog.String("session_id", view.ID.String()),
		slog.Int("total", view.Total))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(view))
}

// GetSession handles GET /api/sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respondWithView(w, r, "Failed to get review session", h.sessions.Get)
}

// RevealSession handles POST /api/sessions/{id}/reveal.
func (h *SessionHandler) RevealSession(w http.ResponseWriter, r *http.Request) {
	h.respondWithView(w, r, "Failed to reveal answer", h.sessions.Reveal)
}

// GradeItem handles POST /api/sessions/{id}/grade.
func (h *SessionHandler) GradeItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req GradeRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return
		}
		log.Warn("invalid grade request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.sessions.Grade(r.Context(), userID, sessionID, review_session.GradeInput{
		ItemID: uuid.MustParse(req.ItemID),
		Label:  req.Grade,
		Code:   req.Code,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to grade item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GradeResponse{
		Outcome: outcomeToResponse(result.Outcome),
		Session: sessionToResponse(result.View),
	})
}

// GetSummary handles GET /api/sessions/{id}/summary. It answers 409 until
// the session is completed.
func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	summary, err := h.sessions.Summary(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session summary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summaryToResponse(summary))
}

// ExitSession handles DELETE /api/sessions/{id}. It ends the session and
// returns the summary of the grades submitted so far.
func (h *SessionHandler) ExitSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	summary, err := h.sessions.Exit(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to exit review session")
		return
	}

	log.Debug("review session exited",
		slog.String("session_id", sessionID.String()),
		slog.Int("count", summary.Count))
	shared.RespondWithJSON(w, r, http.StatusOK, summaryToResponse(summary))
}

type viewFunc func(ctx context.Context, userID, sessionID uuid.UUID) (review_session.View, error)

func (h *SessionHandler) respondWithView(w http.ResponseWriter, r *http.Request, fallback string, fn viewFunc) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	view, err := fn(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(view))
}

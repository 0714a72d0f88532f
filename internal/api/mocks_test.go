package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lexiquest/review-api/internal/api/shared"
	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/service/review_session"
	"github.com/lexiquest/review-api/internal/session"
)

type mockSessionService struct {
	mock.Mock
}

var _ review_session.ReviewSessionService = (*mockSessionService)(nil)

func (m *mockSessionService) Start(ctx context.Context, userID uuid.UUID, limit int) (review_session.View, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).(review_session.View), args.Error(1)
}

func (m *mockSessionService) Get(ctx context.Context, userID, sessionID uuid.UUID) (review_session.View, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).(review_session.View), args.Error(1)
}

func (m *mockSessionService) Reveal(ctx context.Context, userID, sessionID uuid.UUID) (review_session.View, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).(review_session.View), args.Error(1)
}

func (m *mockSessionService) Grade(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	input review_session.GradeInput,
) (review_session.GradeResult, error) {
	args := m.Called(ctx, userID, sessionID, input)
	return args.Get(0).(review_session.GradeResult), args.Error(1)
}

func (m *mockSessionService) Summary(ctx context.Context, userID, sessionID uuid.UUID) (session.Summary, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).(session.Summary), args.Error(1)
}

func (m *mockSessionService) Exit(ctx context.Context, userID, sessionID uuid.UUID) (session.Summary, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).(session.Summary), args.Error(1)
}

func (m *mockSessionService) DueItems(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DueItem, error) {
	args := m.Called(ctx, userID, limit)
	items, _ := args.Get(0).([]domain.DueItem)
	return items, args.Error(1)
}

func (m *mockSessionService) Postpone(
	ctx context.Context,
	userID, itemID uuid.UUID,
	days int,
) (domain.ScheduleState, error) {
	args := m.Called(ctx, userID, itemID, days)
	return args.Get(0).(domain.ScheduleState), args.Error(1)
}

// newTestRouter mounts the handlers the way the server does, minus the
// auth middleware; requests carry their user ID through withUser.
func newTestRouter(t *testing.T, svc review_session.ReviewSessionService) http.Handler {
	t.Helper()
	log, _ := logger.GetTestLogger(t)

	sessions := NewSessionHandler(svc, log)
	items := NewItemHandler(svc, log)

	r := chi.NewRouter()
	r.Post("/api/sessions", sessions.StartSession)
	r.Get("/api/sessions/{id}", sessions.GetSession)
	r.Post("/api/sessions/{id}/reveal", sessions.RevealSession)
	r.Post("/api/sessions/{id}/grade", sessions.GradeItem)
	r.Get("/api/sessions/{id}/summary", sessions.GetSummary)
	r.Delete("/api/sessions/{id}", sessions.ExitSession)
	r.Get("/api/items/due", items.GetDueItems)
	r.Post("/api/items/{id}/postpone", items.PostponeItem)
	return r
}

func newRequest(method, path, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != uuid.Nil {
		req = req.WithContext(shared.WithUserID(req.Context(), userID))
	}
	return req
}

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

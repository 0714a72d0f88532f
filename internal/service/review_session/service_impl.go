package review_session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/domain/srs"
	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/redact"
	"github.com/lexiquest/review-api/internal/session"
	"github.com/lexiquest/review-api/internal/store"
)

// Config tunes a Service.
type Config struct {
	// DefaultLimit caps the queue when Start gets no limit. Zero means no cap.
	DefaultLimit int
	// SessionTTL is how long a session may sit idle before Sweep exits and
	// removes it. Zero disables sweeping.
	SessionTTL time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service implements ReviewSessionService.
type Service struct {
	schedules  store.ScheduleStore
	controller *session.Controller
	srs        srs.Service
	registry   *registry
	cfg        Config
	now        func() time.Time
	logger     *slog.Logger
}

var _ ReviewSessionService = (*Service)(nil)

// NewReviewSessionService creates a Service. It panics on nil dependencies.
func NewReviewSessionService(
	schedules store.ScheduleStore,
	controller *session.Controller,
	srsService srs.Service,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if schedules == nil {
		panic("schedules cannot be nil")
	}
	if controller == nil {
		panic("controller cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		schedules:  schedules,
		controller: controller,
		srs:        srsService,
		registry:   newRegistry(),
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "review_session_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// Start implements ReviewSessionService.Start.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, limit int) (View, error) {
	queue, err := s.selectDue(ctx, userID, limit)
	if err != nil {
		return View{}, err
	}

	sess := s.controller.Start(ctx, userID, queue)
	s.registry.add(sess, s.clock())

	logger.FromContextOrDefault(ctx, s.logger).Info("review session started",
		slog.String("session_id", sess.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("queue_size", len(queue)))

	return newView(sess), nil
}

// DueItems implements ReviewSessionService.DueItems.
func (s *Service) DueItems(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DueItem, error) {
	return s.selectDue(ctx, userID, limit)
}

func (s *Service) selectDue(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DueItem, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	now := s.clock()

	items, err := s.schedules.FetchDue(ctx, userID, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to fetch due items",
			slog.String("user_id", userID.String()),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("fetch due items: %w", err)
	}

	return slices.Collect(srs.SelectDueItems(items, now, limit)), nil
}

// Get implements ReviewSessionService.Get.
func (s *Service) Get(ctx context.Context, userID, sessionID uuid.UUID) (View, error) {
	var view View
	err := s.withSession(userID, sessionID, func(sess *session.Session) error {
		view = newView(sess)
		return nil
	})
	return view, err
}

// Reveal implements ReviewSessionService.Reveal.
func (s *Service) Reveal(ctx context.Context, userID, sessionID uuid.UUID) (View, error) {
	var view View
	err := s.withSession(userID, sessionID, func(sess *session.Session) error {
		if err := s.controller.Reveal(ctx, sess); err != nil {
			return err
		}
		view = newView(sess)
		return nil
	})
	return view, err
}

// Grade implements ReviewSessionService.Grade.
func (s *Service) Grade(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	input GradeInput,
) (GradeResult, error) {
	grade, err := input.Grade()
	if err != nil {
		return GradeResult{}, err
	}

	var result GradeResult
	err = s.withSession(userID, sessionID, func(sess *session.Session) error {
		outcome, err := s.controller.Submit(ctx, sess, input.ItemID, grade)
		if err != nil {
			return err
		}
		result = GradeResult{Outcome: outcome, View: newView(sess)}
		return nil
	})
	return result, err
}

// Summary implements ReviewSessionService.Summary.
func (s *Service) Summary(ctx context.Context, userID, sessionID uuid.UUID) (session.Summary, error) {
	var summary session.Summary
	err := s.withSession(userID, sessionID, func(sess *session.Session) error {
		var err error
		summary, err = s.controller.Summary(sess)
		return err
	})
	return summary, err
}

// Exit implements ReviewSessionService.Exit.
func (s *Service) Exit(ctx context.Context, userID, sessionID uuid.UUID) (session.Summary, error) {
	var summary session.Summary
	err := s.withSession(userID, sessionID, func(sess *session.Session) error {
		summary = s.controller.Exit(ctx, sess)
		return nil
	})
	return summary, err
}

// Postpone implements ReviewSessionService.Postpone.
func (s *Service) Postpone(
	ctx context.Context,
	userID, itemID uuid.UUID,
	days int,
) (domain.ScheduleState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < 1 {
		return domain.ScheduleState{}, ErrInvalidPostpone
	}

	due, err := s.schedules.Get(ctx, userID, itemID)
	if err != nil {
		return domain.ScheduleState{}, fmt.Errorf("get schedule state: %w", err)
	}

	next, err := s.srs.PostponeReview(due.State, days, s.clock())
	if err != nil {
		if errors.Is(err, srs.ErrInvalidDays) {
			return domain.ScheduleState{}, ErrInvalidPostpone
		}
		return domain.ScheduleState{}, fmt.Errorf("postpone review: %w", err)
	}

	if err := s.schedules.Upsert(ctx, next); err != nil {
		log.Error("failed to store postponed schedule state",
			slog.String("user_id", userID.String()),
			slog.String("item_id", itemID.String()),
			slog.String("error", redact.Error(err)))
		return domain.ScheduleState{}, fmt.Errorf("store postponed state: %w", err)
	}

	log.Debug("review postponed",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.Int("days", days))

	return next, nil
}

// Sweep exits and removes every session idle for longer than the session
// TTL, and returns how many were removed. Exiting hands an abandoned
// session's summary to the sink like any other exit.
func (s *Service) Sweep(ctx context.Context) int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}

	expired := s.registry.removeIdle(s.clock().Add(-s.cfg.SessionTTL))
	for _, sess := range expired {
		s.controller.Exit(ctx, sess)
	}

	if len(expired) > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Info("swept idle review sessions",
			slog.Int("removed", len(expired)),
			slog.Int("active", s.registry.len()))
	}
	return len(expired)
}

// StartSweeper runs Sweep every interval until the returned stop function
// is called.
func (s *Service) StartSweeper(interval time.Duration) (stop func(), err error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	if _, err := scheduler.Every(interval).Do(func() {
		s.Sweep(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("schedule session sweep: %w", err)
	}

	scheduler.StartAsync()
	return scheduler.Stop, nil
}

// ActiveSessions returns the number of sessions in the registry.
func (s *Service) ActiveSessions() int {
	return s.registry.len()
}

// withSession runs fn with the session's lock held after checking ownership.
func (s *Service) withSession(userID, sessionID uuid.UUID, fn func(*session.Session) error) error {
	live, ok := s.registry.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	if live.removed {
		return ErrSessionNotFound
	}
	if live.session.UserID != userID {
		return ErrSessionNotOwned
	}

	live.lastAccess = s.clock()
	return fn(live.session)
}

func newView(s *session.Session) View {
	view := View{
		ID:          s.ID,
		UserID:      s.UserID,
		Phase:       s.Phase,
		Position:    s.Cursor,
		Total:       len(s.Queue),
		Remaining:   s.Remaining(),
		Graded:      len(s.Outcomes),
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		Exited:      s.Exited,
	}
	if entry, ok := s.Current(); ok {
		view.Current = &entry
	}
	if s.Completed() {
		summary := session.Summarize(s.Outcomes)
		view.Summary = &summary
	}
	return view
}

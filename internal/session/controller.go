package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/domain/srs"
	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/redact"
)

// RequeuePolicy decides whether an item graded Again is presented again
// later in the same session.
type RequeuePolicy int

const (
	// RequeueNone defers Again items to a future session. A queue of N
	// items completes after exactly N grades.
	RequeueNone RequeuePolicy = iota
	// RequeueAgain appends an Again item to the end of the queue with its
	// new state.
	RequeueAgain
)

// Persister dispatches a graded schedule state for durable storage
// without waiting for it. An error means the write was not dispatched;
// the session carries on regardless.
type Persister interface {
	Dispatch(ctx context.Context, state domain.ScheduleState) error
}

// SummarySink receives the summary of every session exactly once, when
// the session completes or is exited.
type SummarySink interface {
	SessionCompleted(ctx context.Context, s *Session, summary Summary) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithRequeuePolicy sets the Again requeue policy. The default is RequeueNone.
func WithRequeuePolicy(policy RequeuePolicy) Option {
	return func(c *Controller) {
		c.policy = policy
	}
}

// WithSummarySink sets the receiver of session summaries.
func WithSummarySink(sink SummarySink) Option {
	return func(c *Controller) {
		c.sink = sink
	}
}

// WithParams sets the scheduler parameters.
func WithParams(params *srs.Params) Option {
	return func(c *Controller) {
		if params != nil {
			c.params = params
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller drives sessions through their phases. It holds no session
// state itself; callers must not use one Session from several goroutines
// at once.
type Controller struct {
	persister Persister
	sink      SummarySink
	params    *srs.Params
	policy    RequeuePolicy
	now       func() time.Time
	logger    *slog.Logger
}

// NewController creates a Controller. It panics if persister is nil.
func NewController(persister Persister, log *slog.Logger, opts ...Option) *Controller {
	if persister == nil {
		panic("persister cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Controller{
		persister: persister,
		params:    srs.NewDefaultParams(),
		policy:    RequeueNone,
		now:       time.Now,
		logger:    log.With(slog.String("component", "session_controller")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) clock() time.Time {
	return c.now().UTC()
}

// Start opens a session over queue, which is presented in the given order.
// An empty queue yields a session that is already completed.
func (c *Controller) Start(ctx context.Context, userID uuid.UUID, queue []domain.DueItem) *Session {
	now := c.clock()

	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Queue:     make([]Entry, len(queue)),
		Phase:     PhasePresenting,
		Outcomes:  make([]Outcome, 0, len(queue)),
		StartedAt: now,
	}
	for i, item := range queue {
		s.Queue[i] = Entry{DueItem: item}
	}

	log := logger.FromContextOrDefault(ctx, c.logger)
	log.Debug("review session started",
		slog.String("session_id", s.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("queue_len", len(queue)))

	if len(s.Queue) == 0 {
		c.complete(ctx, s, false)
	}

	return s
}

// Reveal moves the session from Presenting to Revealed. Revealing an
// already revealed item is a no-op.
func (c *Controller) Reveal(ctx context.Context, s *Session) error {
	switch s.Phase {
	case PhaseCompleted:
		return invalid("reveal", ErrSessionCompleted)
	case PhaseRevealed:
		return nil
	}

	s.Phase = PhaseRevealed
	return nil
}

// Submit grades the presented item. The next schedule state is applied to
// the session and dispatched for persistence, and the session advances to
// the next item or completes. On error the session is unchanged.
func (c *Controller) Submit(
	ctx context.Context,
	s *Session,
	itemID uuid.UUID,
	grade domain.ReviewGrade,
) (Outcome, error) {
	const op = "submit"

	if s.Phase == PhaseCompleted {
		return Outcome{}, invalid(op, ErrSessionCompleted)
	}

	current, ok := s.Current()
	if !ok {
		return Outcome{}, invalid(op, ErrSessionCompleted)
	}
	if current.Item.ID != itemID {
		if s.gradedEarlier(itemID) {
			return Outcome{}, invalid(op, ErrAlreadyGraded)
		}
		return Outcome{}, invalid(op, ErrItemNotCurrent)
	}
	if current.Graded {
		return Outcome{}, invalid(op, ErrAlreadyGraded)
	}
	if s.Phase != PhaseRevealed {
		return Outcome{}, invalid(op, ErrNotRevealed)
	}
	if !grade.Valid() {
		return Outcome{}, invalid(op, ErrInvalidGrade)
	}

	log := logger.FromContextOrDefault(ctx, c.logger).With(
		slog.String("session_id", s.ID.String()),
		slog.String("item_id", itemID.String()),
	)

	now := c.clock()
	next := srs.ComputeNext(current.State, grade, now, c.params)

	s.Queue[s.Cursor].State = next
	s.Queue[s.Cursor].Graded = true
	s.Cursor++

	if grade == domain.ReviewGradeAgain && c.policy == RequeueAgain {
		s.Queue = append(s.Queue, Entry{
			DueItem: domain.DueItem{Item: current.Item, State: next},
		})
	}

	if err := c.persister.Dispatch(ctx, next); err != nil {
		log.Warn("schedule state not dispatched for persistence",
			slog.String("error", redact.Error(err)))
	}

	outcome := Outcome{
		ItemID:   itemID,
		Grade:    grade,
		State:    next,
		GradedAt: now,
	}
	s.Outcomes = append(s.Outcomes, outcome)

	log.Debug("item graded",
		slog.String("grade", grade.String()),
		slog.Int("interval_days", next.IntervalDays),
		slog.Int("remaining", s.Remaining()))

	if s.Cursor >= len(s.Queue) {
		c.complete(ctx, s, false)
	} else {
		s.Phase = PhasePresenting
	}

	return outcome, nil
}

// Summary returns the summary of a completed session.
func (c *Controller) Summary(s *Session) (Summary, error) {
	if s.Phase != PhaseCompleted {
		return Summary{}, invalid("summary", ErrSessionNotCompleted)
	}
	return Summarize(s.Outcomes), nil
}

// Exit ends the session early and returns the summary of the grades
// submitted so far. Every submitted grade has already been dispatched, so
// nothing is rolled back. Exiting a completed session returns its summary.
func (c *Controller) Exit(ctx context.Context, s *Session) Summary {
	if s.Phase != PhaseCompleted {
		c.complete(ctx, s, true)
	}
	return Summarize(s.Outcomes)
}

// complete moves s to Completed and hands its summary to the sink once.
func (c *Controller) complete(ctx context.Context, s *Session, exited bool) {
	s.Phase = PhaseCompleted
	s.CompletedAt = c.clock()
	s.Exited = exited

	summary := Summarize(s.Outcomes)

	log := logger.FromContextOrDefault(ctx, c.logger)
	log.Info("review session completed",
		slog.String("session_id", s.ID.String()),
		slog.String("user_id", s.UserID.String()),
		slog.Int("count", summary.Count),
		slog.Float64("average_grade_weight", summary.AverageGradeWeight),
		slog.Int("perfect_count", summary.PerfectCount),
		slog.Bool("exited", exited))

	if c.sink == nil || s.SummarySent {
		return
	}
	s.SummarySent = true

	if err := c.sink.SessionCompleted(ctx, s, summary); err != nil {
		log.Warn("session summary not delivered",
			slog.String("session_id", s.ID.String()),
			slog.String("error", redact.Error(err)))
	}
}

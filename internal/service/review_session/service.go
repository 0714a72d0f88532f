// Package review_session runs review sessions on behalf of authenticated
// learners. It fetches and selects due items, keeps live sessions in an
// in-memory registry and drives them through the session controller.
package review_session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/session"
)

// Common error types for ReviewSessionService
var (
	// ErrSessionNotFound indicates the session does not exist or has expired.
	ErrSessionNotFound = errors.New("review session not found")

	// ErrSessionNotOwned indicates the session belongs to another learner.
	ErrSessionNotOwned = errors.New("review session is owned by another user")

	// ErrGradeRequired indicates neither a grade label nor a code was given.
	ErrGradeRequired = errors.New("grade label or code is required")

	// ErrInvalidPostpone indicates a postpone request with fewer than one day.
	ErrInvalidPostpone = errors.New("postpone days must be at least 1")
)

// GradeInput is a grade as it arrives from a client. Exactly one of Label
// ("again", "hard", "good", "easy") or Code (legacy 1, 2, 4, 5) is set.
type GradeInput struct {
	ItemID uuid.UUID
	Label  string
	Code   int
}

// Grade translates the input into a ReviewGrade. Unknown labels and codes
// wrap session.ErrInvalidGrade.
func (in GradeInput) Grade() (domain.ReviewGrade, error) {
	var (
		grade domain.ReviewGrade
		err   error
	)
	switch {
	case in.Label != "" && in.Code != 0:
		return 0, errors.Join(session.ErrInvalidGrade, errors.New("label and code are mutually exclusive"))
	case in.Label != "":
		grade, err = domain.ParseReviewGrade(in.Label)
	case in.Code != 0:
		grade, err = domain.ReviewGradeFromCode(in.Code)
	default:
		return 0, ErrGradeRequired
	}
	if err != nil {
		return 0, errors.Join(session.ErrInvalidGrade, err)
	}
	return grade, nil
}

// View is a read-only snapshot of a session, safe to hand to callers
// outside the registry lock.
type View struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Phase       session.Phase
	Current     *session.Entry
	Position    int
	Total       int
	Remaining   int
	Graded      int
	StartedAt   time.Time
	CompletedAt time.Time
	Exited      bool
	Summary     *session.Summary
}

// GradeResult is the outcome of a Grade call and the session afterwards.
type GradeResult struct {
	Outcome session.Outcome
	View    View
}

// ReviewSessionService manages review sessions for learners.
//
// Every session operation checks that the session belongs to userID and
// returns ErrSessionNotFound or ErrSessionNotOwned otherwise. Controller
// rejections are returned as *session.ValidationError.
type ReviewSessionService interface {
	// Start fetches the learner's due items, selects at most limit of them
	// (the configured default when limit <= 0) and opens a session. A
	// learner with nothing due gets a session that is already completed.
	Start(ctx context.Context, userID uuid.UUID, limit int) (View, error)

	// Get returns the current view of a session.
	Get(ctx context.Context, userID, sessionID uuid.UUID) (View, error)

	// Reveal shows the answer for the current item.
	Reveal(ctx context.Context, userID, sessionID uuid.UUID) (View, error)

	// Grade submits a grade for the current item.
	Grade(ctx context.Context, userID, sessionID uuid.UUID, input GradeInput) (GradeResult, error)

	// Summary returns the summary of a completed session.
	Summary(ctx context.Context, userID, sessionID uuid.UUID) (session.Summary, error)

	// Exit ends a session early and returns the summary so far.
	Exit(ctx context.Context, userID, sessionID uuid.UUID) (session.Summary, error)

	// DueItems previews what Start would queue, without opening a session.
	DueItems(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DueItem, error)

	// Postpone pushes an item's next review out by days and stores the
	// result. Returns store.ErrItemNotFound for unknown or foreign items.
	Postpone(ctx context.Context, userID, itemID uuid.UUID, days int) (domain.ScheduleState, error)
}

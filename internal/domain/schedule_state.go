package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Scheduling defaults shared by the scheduler and the store adapters.
const (
	// DefaultEase is the ease assigned to an item the first time it is scheduled.
	DefaultEase = 2.5

	// MinEase is the floor below which ease never drops.
	MinEase = 1.3
)

// Common validation errors for ScheduleState
var (
	ErrEmptyStateUserID  = errors.New("schedule state user ID cannot be empty")
	ErrEmptyStateItemID  = errors.New("schedule state item ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidRepetition = errors.New("repetitions must be greater than or equal to 0")
	ErrInvalidEase       = errors.New("ease must be at least 1.3")
	ErrNextReviewDrift   = errors.New("next review must equal last reviewed plus interval")
)

// ScheduleState is a learner's spaced repetition memory state for one
// vocabulary item. Only the SRS scheduler produces new values of it.
type ScheduleState struct {
	UserID       uuid.UUID `json:"user_id"`
	ItemID       uuid.UUID `json:"item_id"`
	Ease         float64   `json:"ease"`
	IntervalDays int       `json:"interval_days"`
	Repetitions  int       `json:"repetitions"`   // Consecutive non-Again grades since the last reset
	LastReviewed time.Time `json:"last_reviewed"` // Zero when the item was never graded
	NextReview   time.Time `json:"next_review"`
	ReviewCount  int       `json:"review_count"` // Total gradings, never reset
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewScheduleState creates the default state for an item that has never been
// reviewed. The item is due immediately.
func NewScheduleState(userID, itemID uuid.UUID, now time.Time) (ScheduleState, error) {
	state := ScheduleState{
		UserID:       userID,
		ItemID:       itemID,
		Ease:         DefaultEase,
		IntervalDays: 0,
		Repetitions:  0,
		NextReview:   now,
		UpdatedAt:    now,
	}

	if err := state.Validate(); err != nil {
		return ScheduleState{}, err
	}

	return state, nil
}

// Reviewed reports whether the item has been graded at least once.
func (s ScheduleState) Reviewed() bool {
	return !s.LastReviewed.IsZero()
}

// IsDue reports whether the item is due at now. An item is due at or after
// its NextReview time.
func (s ScheduleState) IsDue(now time.Time) bool {
	return !s.NextReview.After(now)
}

// Validate checks the invariants every stored or computed state must hold.
func (s ScheduleState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if s.ItemID == uuid.Nil {
		return ErrEmptyStateItemID
	}

	if s.Ease < MinEase {
		return ErrInvalidEase
	}

	if s.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	if s.Repetitions < 0 {
		return ErrInvalidRepetition
	}

	if s.Reviewed() && !s.NextReview.Equal(s.LastReviewed.AddDate(0, 0, s.IntervalDays)) {
		return ErrNextReviewDrift
	}

	return nil
}

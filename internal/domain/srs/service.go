package srs

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lexiquest/review-api/internal/domain"
)

// Common errors
var (
	ErrInvalidGrade = errors.New("invalid review grade")
	ErrInvalidDays  = errors.New("postpone days must be at least 1")
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// CalculateNextReview computes the next state for a grade
	CalculateNextReview(
		state domain.ScheduleState,
		grade domain.ReviewGrade,
		now time.Time,
	) (domain.ScheduleState, error)

	// PostponeReview pushes the next review time forward by a specified number of days
	PostponeReview(
		state domain.ScheduleState,
		days int,
		now time.Time,
	) (domain.ScheduleState, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface for calculating the next state
func (s *defaultService) CalculateNextReview(
	state domain.ScheduleState,
	grade domain.ReviewGrade,
	now time.Time,
) (domain.ScheduleState, error) {
	if !grade.Valid() {
		return domain.ScheduleState{}, fmt.Errorf("%w: %v", ErrInvalidGrade, grade)
	}

	return ComputeNext(state, grade, now, s.params), nil
}

// PostponeReview implements the Service interface for postponing reviews.
// The new due date is days after the later of NextReview and now, so an
// overdue item always leaves the due queue. For a reviewed item the interval
// is recomputed from LastReviewed, rounding up to whole days, so NextReview
// stays equal to LastReviewed plus the interval.
func (s *defaultService) PostponeReview(
	state domain.ScheduleState,
	days int,
	now time.Time,
) (domain.ScheduleState, error) {
	if days < 1 {
		return domain.ScheduleState{}, ErrInvalidDays
	}

	base := state.NextReview
	if now.After(base) {
		base = now
	}
	target := base.AddDate(0, 0, days)

	next := state
	next.UpdatedAt = now

	if state.Reviewed() {
		elapsed := target.Sub(state.LastReviewed)
		next.IntervalDays = int(math.Ceil(elapsed.Hours() / 24))
		next.NextReview = state.LastReviewed.AddDate(0, 0, next.IntervalDays)
		return next, nil
	}

	next.NextReview = target
	return next, nil
}

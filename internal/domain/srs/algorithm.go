package srs

import (
	"math"
	"time"

	"github.com/lexiquest/review-api/internal/domain"
)

// calculateNewEase determines the new ease based on the review grade.
//
// Again and Hard lower the ease, Good leaves it as is and Easy raises it.
// The result is clamped to params.MinEase; there is no upper bound.
func calculateNewEase(
	currentEase float64,
	grade domain.ReviewGrade,
	params *Params,
) float64 {
	newEase := currentEase + params.EaseAdjustment[grade]
	if newEase < params.MinEase {
		newEase = params.MinEase
	}
	return newEase
}

// calculateNewInterval determines the new interval in days.
//
// Parameters:
//   - currentInterval: The interval in days before this review
//   - repetitions: The repetition count after this review has been applied
//   - currentEase: The ease before this review's adjustment
//   - grade: The reviewer's grade
//   - params: Configuration parameters for the SRS algorithm
//
// Algorithm behavior:
//   - Again: interval 0, the item is due again immediately
//   - First success after a reset (repetitions == 1): fixed base by grade
//   - Later successes: round(currentInterval * growth), where growth is
//     1.2 for Hard, ease for Good and ease*1.3 for Easy
//   - The result never exceeds params.MaximumInterval
func calculateNewInterval(
	currentInterval int,
	repetitions int,
	currentEase float64,
	grade domain.ReviewGrade,
	params *Params,
) int {
	if grade == domain.ReviewGradeAgain {
		return 0
	}

	if repetitions == 1 {
		return min(params.FirstSuccessIntervals[grade], params.maxInterval())
	}

	// Compare as float so huge intervals saturate instead of overflowing int.
	grown := math.Round(float64(currentInterval) * params.growth(grade, currentEase))
	if limit := params.maxInterval(); grown >= float64(limit) {
		return limit
	}
	if grown < 0 {
		return 0
	}
	return int(grown)
}

// ComputeNext returns the schedule state that results from grading state
// with grade at now.
//
// It is pure and deterministic: the input is never modified and the same
// arguments always produce the same result, which lets callers apply it
// optimistically before the store confirms the write. grade must be valid;
// an invalid grade returns state unchanged. Callers that accept grades from
// outside go through Service.CalculateNextReview, which rejects them.
//
// Algorithm behavior:
//   - Again resets repetitions and the interval to 0 and lowers ease by 0.2
//   - Hard, Good and Easy increment repetitions, grow the interval (see
//     calculateNewInterval) and adjust ease by -0.15, 0 and +0.15
//   - Ease never drops below params.MinEase
//   - LastReviewed becomes now and NextReview becomes now + interval days
func ComputeNext(
	state domain.ScheduleState,
	grade domain.ReviewGrade,
	now time.Time,
	params *Params,
) domain.ScheduleState {
	if !grade.Valid() {
		return state
	}

	next := state

	if grade == domain.ReviewGradeAgain {
		next.Repetitions = 0
	} else {
		next.Repetitions = state.Repetitions + 1
	}

	next.IntervalDays = calculateNewInterval(
		state.IntervalDays,
		next.Repetitions,
		state.Ease,
		grade,
		params,
	)
	next.Ease = calculateNewEase(state.Ease, grade, params)

	next.LastReviewed = now
	next.NextReview = now.AddDate(0, 0, next.IntervalDays)
	next.ReviewCount = state.ReviewCount + 1
	next.UpdatedAt = now

	return next
}

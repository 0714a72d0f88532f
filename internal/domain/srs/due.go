package srs

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/lexiquest/review-api/internal/domain"
)

// SelectDue returns the items whose state is due at now, most overdue first.
//
// Items are ordered by ascending NextReview, then ascending Ease so the
// weakest items surface first; remaining ties keep their input order. A
// positive limit truncates the ordered result, never the input. The
// returned sequence is lazy and can be ranged over any number of times
// with the same result. The input slice is copied when SelectDue is
// called, so later changes to it do not affect the sequence.
func SelectDue[T any](
	items []T,
	stateOf func(T) domain.ScheduleState,
	now time.Time,
	limit int,
) iter.Seq[T] {
	snapshot := slices.Clone(items)

	return func(yield func(T) bool) {
		due := make([]T, 0, len(snapshot))
		for _, item := range snapshot {
			if stateOf(item).IsDue(now) {
				due = append(due, item)
			}
		}

		slices.SortStableFunc(due, func(a, b T) int {
			sa, sb := stateOf(a), stateOf(b)
			if c := sa.NextReview.Compare(sb.NextReview); c != 0 {
				return c
			}
			return cmp.Compare(sa.Ease, sb.Ease)
		})

		for i, item := range due {
			if limit > 0 && i >= limit {
				return
			}
			if !yield(item) {
				return
			}
		}
	}
}

// SelectDueStates is SelectDue over bare schedule states.
func SelectDueStates(states []domain.ScheduleState, now time.Time, limit int) iter.Seq[domain.ScheduleState] {
	return SelectDue(states, func(s domain.ScheduleState) domain.ScheduleState { return s }, now, limit)
}

// SelectDueItems is SelectDue over item/state pairs as returned by the store.
func SelectDueItems(items []domain.DueItem, now time.Time, limit int) iter.Seq[domain.DueItem] {
	return SelectDue(items, func(d domain.DueItem) domain.ScheduleState { return d.State }, now, limit)
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/domain"
)

// ScheduleStore persists one ScheduleState per learner and item.
type ScheduleStore interface {
	// FetchDue returns every item owned by userID whose state is due at now,
	// paired with that state. Items that were never reviewed have no stored
	// state and are returned with the default state, due immediately.
	// Ordering is unspecified; callers pass the result through the selector.
	FetchDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.DueItem, error)

	// Get returns the item and its state for userID. An item without a stored
	// state gets the default state. Returns ErrItemNotFound when the item does
	// not exist or is owned by another learner.
	Get(ctx context.Context, userID, itemID uuid.UUID) (domain.DueItem, error)

	// Upsert writes the complete state, replacing any stored state for the
	// same user and item. A stored state with a later UpdatedAt is kept, so
	// writes that complete out of order never roll a state back.
	// Returns ErrInvalidEntity when the state fails validation.
	Upsert(ctx context.Context, state domain.ScheduleState) error
}

// NewDueItem pairs an item that has no stored state with the default state,
// due at now.
func NewDueItem(item domain.VocabularyItem, now time.Time) (domain.DueItem, error) {
	state, err := domain.NewScheduleState(item.UserID, item.ID, now)
	if err != nil {
		return domain.DueItem{}, fmt.Errorf("%w: %v", ErrInvalidEntity, err)
	}
	return domain.DueItem{Item: item, State: state}, nil
}

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/domain"
)

// VocabularyStore reads and seeds vocabulary items. Content authoring lives
// elsewhere; the review core only needs to look items up.
type VocabularyStore interface {
	// Create stores a single item.
	// Returns ErrInvalidEntity if validation fails and ErrDuplicate if the ID is taken.
	Create(ctx context.Context, item *domain.VocabularyItem) error

	// CreateMultiple stores all items atomically. Either every item is
	// stored or none is.
	CreateMultiple(ctx context.Context, items []*domain.VocabularyItem) error

	// GetByID returns the item with the given ID.
	// Returns ErrItemNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)
}

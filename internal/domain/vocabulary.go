package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vocabulary-specific validation errors
var (
	// ErrItemIDEmpty is returned when an item ID is empty or nil.
	ErrItemIDEmpty = errors.New("vocabulary item ID cannot be empty")

	// ErrItemUserIDEmpty is returned when an item's owner ID is empty or nil.
	ErrItemUserIDEmpty = errors.New("vocabulary item user ID cannot be empty")

	// ErrHeadwordEmpty is returned when an item has no headword.
	ErrHeadwordEmpty = errors.New("vocabulary item headword cannot be empty")

	// ErrMeaningEmpty is returned when an item has no meaning.
	ErrMeaningEmpty = errors.New("vocabulary item meaning cannot be empty")
)

// VocabularyItem is a word or phrase in a learner's deck. The review core
// only ever reads it.
type VocabularyItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Headword  string    `json:"headword"`
	Meaning   string    `json:"meaning"`
	Example   string    `json:"example,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewVocabularyItem creates a new item owned by userID with a fresh ID.
// Returns an error if validation fails.
func NewVocabularyItem(userID uuid.UUID, headword, meaning, example, category string) (*VocabularyItem, error) {
	item := &VocabularyItem{
		ID:        uuid.New(),
		UserID:    userID,
		Headword:  strings.TrimSpace(headword),
		Meaning:   strings.TrimSpace(meaning),
		Example:   strings.TrimSpace(example),
		Category:  strings.TrimSpace(category),
		CreatedAt: time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the VocabularyItem has valid data.
func (v *VocabularyItem) Validate() error {
	if v.ID == uuid.Nil {
		return ErrItemIDEmpty
	}

	if v.UserID == uuid.Nil {
		return ErrItemUserIDEmpty
	}

	if v.Headword == "" {
		return ErrHeadwordEmpty
	}

	if v.Meaning == "" {
		return ErrMeaningEmpty
	}

	return nil
}

// DueItem pairs a vocabulary item with the learner's schedule state for it.
// It is the unit a review session queues.
type DueItem struct {
	Item  VocabularyItem `json:"item"`
	State ScheduleState  `json:"state"`
}

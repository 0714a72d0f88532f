package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/store"
)

type itemRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Headword  string    `db:"headword"`
	Meaning   string    `db:"meaning"`
	Example   string    `db:"example"`
	Category  string    `db:"category"`
	CreatedAt string    `db:"created_at"`
}

// VocabularyStore implements store.VocabularyStore on SQLite.
type VocabularyStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ store.VocabularyStore = (*VocabularyStore)(nil)

// NewVocabularyStore creates a vocabulary store on db.
func NewVocabularyStore(db *sqlx.DB, logger *slog.Logger) *VocabularyStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &VocabularyStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_store")),
	}
}

// Create implements store.VocabularyStore.
func (s *VocabularyStore) Create(ctx context.Context, item *domain.VocabularyItem) error {
	if err := insertItem(ctx, s.db, item); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("vocabulary item created",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", item.UserID.String()))
	return nil
}

// CreateMultiple implements store.VocabularyStore.
func (s *VocabularyStore) CreateMultiple(ctx context.Context, items []*domain.VocabularyItem) error {
	return store.RunInTransaction(ctx, s.db.DB, func(ctx context.Context, tx *sql.Tx) error {
		for _, item := range items {
			if err := insertItem(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID implements store.VocabularyStore.
func (s *VocabularyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	var row itemRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, user_id, headword, meaning, example, category, created_at
		FROM vocabulary_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrItemNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("vocabulary_item", "get", "query failed", MapError(err))
	}

	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return nil, store.NewStoreError("vocabulary_item", "get", "decode failed", err)
	}

	return &domain.VocabularyItem{
		ID:        row.ID,
		UserID:    row.UserID,
		Headword:  row.Headword,
		Meaning:   row.Meaning,
		Example:   row.Example,
		Category:  row.Category,
		CreatedAt: createdAt,
	}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertItem(ctx context.Context, db execer, item *domain.VocabularyItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO vocabulary_items (id, user_id, headword, meaning, example, category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.Headword, item.Meaning, item.Example, item.Category,
		formatTime(item.CreatedAt))
	if err != nil {
		return store.NewStoreError("vocabulary_item", "create", "insert failed", MapError(err))
	}
	return nil
}

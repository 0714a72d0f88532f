package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/store"
)

const insertItemQuery = `
INSERT INTO vocabulary_items (id, user_id, headword, meaning, example, category, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

const getItemQuery = `
SELECT id, user_id, headword, meaning, example, category, created_at
FROM vocabulary_items
WHERE id = $1`

// PostgresVocabularyStore implements store.VocabularyStore.
type PostgresVocabularyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.VocabularyStore = (*PostgresVocabularyStore)(nil)

// NewPostgresVocabularyStore creates a vocabulary store on db.
// If logger is nil, slog.Default() is used.
func NewPostgresVocabularyStore(db store.DBTX, logger *slog.Logger) *PostgresVocabularyStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVocabularyStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_store")),
	}
}

// WithTx returns a store bound to tx.
func (s *PostgresVocabularyStore) WithTx(tx *sql.Tx) *PostgresVocabularyStore {
	return &PostgresVocabularyStore{db: tx, logger: s.logger}
}

// Create implements store.VocabularyStore.
func (s *PostgresVocabularyStore) Create(ctx context.Context, item *domain.VocabularyItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, insertItemQuery,
		item.ID, item.UserID, item.Headword, item.Meaning, item.Example, item.Category, item.CreatedAt)
	if err != nil {
		return store.NewStoreError("vocabulary_item", "create", "insert failed", MapError(err))
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("vocabulary item created",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", item.UserID.String()))
	return nil
}

// CreateMultiple implements store.VocabularyStore. On a connection it opens
// its own transaction; on a transaction it joins the caller's.
func (s *PostgresVocabularyStore) CreateMultiple(ctx context.Context, items []*domain.VocabularyItem) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return s.createAll(ctx, items)
	}

	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).createAll(ctx, items)
	})
}

func (s *PostgresVocabularyStore) createAll(ctx context.Context, items []*domain.VocabularyItem) error {
	for _, item := range items {
		if err := s.Create(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements store.VocabularyStore.
func (s *PostgresVocabularyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	var item domain.VocabularyItem

	err := s.db.QueryRowContext(ctx, getItemQuery, id).Scan(
		&item.ID, &item.UserID, &item.Headword, &item.Meaning, &item.Example, &item.Category, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrItemNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("vocabulary_item", "get", "query failed", MapError(err))
	}

	item.CreatedAt = item.CreatedAt.UTC()
	return &item, nil
}

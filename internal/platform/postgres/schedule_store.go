package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/platform/logger"
	"github.com/lexiquest/review-api/internal/store"
)

const dueItemColumns = `
	i.id, i.user_id, i.headword, i.meaning, i.example, i.category, i.created_at,
	s.ease, s.interval_days, s.repetitions, s.last_reviewed, s.next_review,
	s.review_count, s.updated_at`

const fetchDueQuery = `
SELECT` + dueItemColumns + `
FROM vocabulary_items i
LEFT JOIN schedule_states s ON s.item_id = i.id AND s.user_id = i.user_id
WHERE i.user_id = $1 AND (s.next_review IS NULL OR s.next_review <= $2)
ORDER BY i.created_at, i.id`

const getDueItemQuery = `
SELECT` + dueItemColumns + `
FROM vocabulary_items i
LEFT JOIN schedule_states s ON s.item_id = i.id AND s.user_id = i.user_id
WHERE i.user_id = $1 AND i.id = $2`

// The WHERE clause on the update keeps a newer stored state when writes
// complete out of order.
const upsertStateQuery = `
INSERT INTO schedule_states (
	user_id, item_id, ease, interval_days, repetitions,
	last_reviewed, next_review, review_count, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (user_id, item_id) DO UPDATE SET
	ease = EXCLUDED.ease,
	interval_days = EXCLUDED.interval_days,
	repetitions = EXCLUDED.repetitions,
	last_reviewed = EXCLUDED.last_reviewed,
	next_review = EXCLUDED.next_review,
	review_count = EXCLUDED.review_count,
	updated_at = EXCLUDED.updated_at
WHERE schedule_states.updated_at <= EXCLUDED.updated_at`

// PostgresScheduleStore implements store.ScheduleStore.
type PostgresScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ScheduleStore = (*PostgresScheduleStore)(nil)

// NewPostgresScheduleStore creates a schedule store on db, which may be a
// connection or a transaction. If logger is nil, slog.Default() is used.
func NewPostgresScheduleStore(db store.DBTX, logger *slog.Logger) *PostgresScheduleStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

// WithTx returns a store bound to tx.
func (s *PostgresScheduleStore) WithTx(tx *sql.Tx) *PostgresScheduleStore {
	return &PostgresScheduleStore{db: tx, logger: s.logger}
}

// FetchDue implements store.ScheduleStore.
func (s *PostgresScheduleStore) FetchDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]domain.DueItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, fetchDueQuery, userID, now)
	if err != nil {
		return nil, store.NewStoreError("schedule_state", "fetch_due", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var items []domain.DueItem
	for rows.Next() {
		item, err := scanDueItem(rows, now)
		if err != nil {
			return nil, store.NewStoreError("schedule_state", "fetch_due", "scan failed", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("schedule_state", "fetch_due", "iteration failed", MapError(err))
	}

	log.Debug("fetched due items",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)))

	return items, nil
}

// Get implements store.ScheduleStore.
func (s *PostgresScheduleStore) Get(ctx context.Context, userID, itemID uuid.UUID) (domain.DueItem, error) {
	row := s.db.QueryRowContext(ctx, getDueItemQuery, userID, itemID)

	item, err := scanDueItem(row, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DueItem{}, store.ErrItemNotFound
	}
	if err != nil {
		return domain.DueItem{}, store.NewStoreError("schedule_state", "get", "query failed", err)
	}

	return item, nil
}

// Upsert implements store.ScheduleStore.
func (s *PostgresScheduleStore) Upsert(ctx context.Context, state domain.ScheduleState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, upsertStateQuery,
		state.UserID,
		state.ItemID,
		state.Ease,
		state.IntervalDays,
		state.Repetitions,
		nullTime(state.LastReviewed),
		state.NextReview,
		state.ReviewCount,
		state.UpdatedAt,
	)
	if err != nil {
		return store.NewStoreError("schedule_state", "upsert", "write failed", MapError(err))
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		log.Debug("kept newer stored schedule state",
			slog.String("user_id", state.UserID.String()),
			slog.String("item_id", state.ItemID.String()))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDueItem reads one joined row. A row without a state gets the default
// state due at now.
func scanDueItem(row rowScanner, now time.Time) (domain.DueItem, error) {
	var (
		item         domain.VocabularyItem
		ease         sql.NullFloat64
		intervalDays sql.NullInt64
		repetitions  sql.NullInt64
		lastReviewed sql.NullTime
		nextReview   sql.NullTime
		reviewCount  sql.NullInt64
		updatedAt    sql.NullTime
	)

	err := row.Scan(
		&item.ID, &item.UserID, &item.Headword, &item.Meaning, &item.Example, &item.Category, &item.CreatedAt,
		&ease, &intervalDays, &repetitions, &lastReviewed, &nextReview, &reviewCount, &updatedAt,
	)
	if err != nil {
		return domain.DueItem{}, err
	}
	item.CreatedAt = item.CreatedAt.UTC()

	if !nextReview.Valid {
		return store.NewDueItem(item, now)
	}

	state := domain.ScheduleState{
		UserID:       item.UserID,
		ItemID:       item.ID,
		Ease:         ease.Float64,
		IntervalDays: int(intervalDays.Int64),
		Repetitions:  int(repetitions.Int64),
		NextReview:   nextReview.Time.UTC(),
		ReviewCount:  int(reviewCount.Int64),
		UpdatedAt:    updatedAt.Time.UTC(),
	}
	if lastReviewed.Valid {
		state.LastReviewed = lastReviewed.Time.UTC()
	}

	return domain.DueItem{Item: item, State: state}, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
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
WHERE i.user_id = ? AND (s.next_review IS NULL OR s.next_review <= ?)
ORDER BY i.created_at, i.id`

const getDueItemQuery = `
SELECT` + dueItemColumns + `
FROM vocabulary_items i
LEFT JOIN schedule_states s ON s.item_id = i.id AND s.user_id = i.user_id
WHERE i.user_id = ? AND i.id = ?`

const upsertStateQuery = `
INSERT INTO schedule_states (
	user_id, item_id, ease, interval_days, repetitions,
	last_reviewed, next_review, review_count, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, item_id) DO UPDATE SET
	ease = excluded.ease,
	interval_days = excluded.interval_days,
	repetitions = excluded.repetitions,
	last_reviewed = excluded.last_reviewed,
	next_review = excluded.next_review,
	review_count = excluded.review_count,
	updated_at = excluded.updated_at
WHERE schedule_states.updated_at <= excluded.updated_at`

// dueItemRow is one vocabulary item joined with its optional state.
type dueItemRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Headword  string    `db:"headword"`
	Meaning   string    `db:"meaning"`
	Example   string    `db:"example"`
	Category  string    `db:"category"`
	CreatedAt string    `db:"created_at"`

	Ease         sql.NullFloat64 `db:"ease"`
	IntervalDays sql.NullInt64   `db:"interval_days"`
	Repetitions  sql.NullInt64   `db:"repetitions"`
	LastReviewed sql.NullString  `db:"last_reviewed"`
	NextReview   sql.NullString  `db:"next_review"`
	ReviewCount  sql.NullInt64   `db:"review_count"`
	UpdatedAt    sql.NullString  `db:"updated_at"`
}

func (r dueItemRow) toDomain(now time.Time) (domain.DueItem, error) {
	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return domain.DueItem{}, err
	}

	item := domain.VocabularyItem{
		ID:        r.ID,
		UserID:    r.UserID,
		Headword:  r.Headword,
		Meaning:   r.Meaning,
		Example:   r.Example,
		Category:  r.Category,
		CreatedAt: createdAt,
	}

	if !r.NextReview.Valid {
		return store.NewDueItem(item, now)
	}

	state := domain.ScheduleState{
		UserID:       r.UserID,
		ItemID:       r.ID,
		Ease:         r.Ease.Float64,
		IntervalDays: int(r.IntervalDays.Int64),
		Repetitions:  int(r.Repetitions.Int64),
		ReviewCount:  int(r.ReviewCount.Int64),
	}
	if state.NextReview, err = parseTime(r.NextReview.String); err != nil {
		return domain.DueItem{}, err
	}
	if state.UpdatedAt, err = parseTime(r.UpdatedAt.String); err != nil {
		return domain.DueItem{}, err
	}
	if r.LastReviewed.Valid {
		if state.LastReviewed, err = parseTime(r.LastReviewed.String); err != nil {
			return domain.DueItem{}, err
		}
	}

	return domain.DueItem{Item: item, State: state}, nil
}

// ScheduleStore implements store.ScheduleStore on SQLite.
type ScheduleStore struct {
	db     sqlx.ExtContext
	logger *slog.Logger
}

var _ store.ScheduleStore = (*ScheduleStore)(nil)

// NewScheduleStore creates a schedule store on db, which may be a *sqlx.DB
// or a *sqlx.Tx. If logger is nil, slog.Default() is used.
func NewScheduleStore(db sqlx.ExtContext, logger *slog.Logger) *ScheduleStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

// FetchDue implements store.ScheduleStore.
func (s *ScheduleStore) FetchDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]domain.DueItem, error) {
	var rows []dueItemRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, fetchDueQuery, userID, formatTime(now)); err != nil {
		return nil, store.NewStoreError("schedule_state", "fetch_due", "query failed", MapError(err))
	}

	items := make([]domain.DueItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain(now)
		if err != nil {
			return nil, store.NewStoreError("schedule_state", "fetch_due", "decode failed", err)
		}
		items = append(items, item)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("fetched due items",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)))

	return items, nil
}

// Get implements store.ScheduleStore.
func (s *ScheduleStore) Get(ctx context.Context, userID, itemID uuid.UUID) (domain.DueItem, error) {
	var row dueItemRow
	err := sqlx.GetContext(ctx, s.db, &row, getDueItemQuery, userID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DueItem{}, store.ErrItemNotFound
	}
	if err != nil {
		return domain.DueItem{}, store.NewStoreError("schedule_state", "get", "query failed", MapError(err))
	}

	return row.toDomain(time.Now().UTC())
}

// Upsert implements store.ScheduleStore. A stored state with a later
// UpdatedAt is kept.
func (s *ScheduleStore) Upsert(ctx context.Context, state domain.ScheduleState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var lastReviewed sql.NullString
	if state.Reviewed() {
		lastReviewed = sql.NullString{String: formatTime(state.LastReviewed), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, upsertStateQuery,
		state.UserID,
		state.ItemID,
		state.Ease,
		state.IntervalDays,
		state.Repetitions,
		lastReviewed,
		formatTime(state.NextReview),
		state.ReviewCount,
		formatTime(state.UpdatedAt),
	)
	if err != nil {
		return store.NewStoreError("schedule_state", "upsert", "write failed", MapError(err))
	}

	return nil
}

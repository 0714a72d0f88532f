package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lexiquest/review-api/internal/platform/postgres"
	"github.com/lexiquest/review-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "schedule_states",
		ColumnName:     "next_review",
		ConstraintName: "schedule_states_ease_check",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	genericErr := errors.New("connection reset")

	tests := []struct {
		name        string
		err         error
		expectedErr error
		contains    string
	}{
		{name: "no rows", err: sql.ErrNoRows, expectedErr: store.ErrNotFound},
		{name: "unique violation", err: newPgError("23505"), expectedErr: store.ErrDuplicate},
		{name: "foreign key violation", err: newPgError("23503"), expectedErr: store.ErrInvalidEntity, contains: "foreign key"},
		{name: "check violation", err: newPgError("23514"), expectedErr: store.ErrInvalidEntity, contains: "schedule_states_ease_check"},
		{name: "not null violation", err: newPgError("23502"), expectedErr: store.ErrInvalidEntity, contains: "next_review"},
		{
			name:        "wrapped unique violation",
			err:         fmt.Errorf("insert: %w", newPgError("23505")),
			expectedErr: store.ErrDuplicate,
		},
		{name: "unmapped error", err: genericErr, expectedErr: genericErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mapped := postgres.MapError(tt.err)
			assert.ErrorIs(t, mapped, tt.expectedErr)
			if tt.contains != "" {
				assert.Contains(t, mapped.Error(), tt.contains)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, postgres.MapError(nil))
}

func TestMigrate_UnknownCommand(t *testing.T) {
	err := postgres.Migrate(t.Context(), nil, "sideways", nil)
	assert.ErrorContains(t, err, "unknown migration command")
}

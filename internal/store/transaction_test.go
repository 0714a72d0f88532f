package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lexiquest/review-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A second connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE entries (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countEntries(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n))
	return n
}

func TestRunInTransaction_Commit(t *testing.T) {
	db := openTestDB(t)

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO entries (name) VALUES ('a'), ('b')`)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 2, countEntries(t, db))
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db := openTestDB(t)
	errBoom := errors.New("boom")

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO entries (name) VALUES ('a')`); err != nil {
			return err
		}
		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 0, countEntries(t, db))
}

func TestRunInTransaction_RollbackOnPanic(t *testing.T) {
	db := openTestDB(t)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO entries (name) VALUES ('a')`)
			panic("kaboom")
		})
	})

	assert.Equal(t, 0, countEntries(t, db))
}

func TestRunInTransaction_BeginFails(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Close())

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})

	assert.ErrorIs(t, err, store.ErrTransactionFailed)
}

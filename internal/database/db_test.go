package database_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/hedgeflow/internal/database"
	testingpkg "github.com/aristath/hedgeflow/internal/testing"
)

func TestNew_CreatesDirectoryAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "market.db")

	db, err := database.New(database.Config{Path: path, Name: "market"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	// Schema is idempotent
	require.NoError(t, db.Migrate())

	for _, table := range []string{"market_snapshots", "daily_prices", "regime_history"} {
		var name string
		err := db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	assert.Equal(t, "market", db.Name())
	assert.NoError(t, db.QuickCheck(context.Background()))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageSize, int64(0))
}

func TestMigrate_UnknownSchemaIsNoop(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "scratch")
	defer cleanup()

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "market")
	defer cleanup()

	insert := func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO daily_prices (category, date, close) VALUES ('fuel', 1, 3.1)")
		return err
	}

	require.NoError(t, database.WithTransaction(db.Conn(), insert))

	boom := errors.New("boom")
	err := database.WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO daily_prices (category, date, close) VALUES ('fuel', 2, 3.2)"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = database.WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		panic("unexpected")
	})
	assert.Error(t, err)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM daily_prices").Scan(&count))
	assert.Equal(t, 1, count)

	assert.Error(t, database.WithTransaction(nil, insert))
}

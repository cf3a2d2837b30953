package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MigrateAndHealthCheck(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "advisor.db")

	db, err := New(Config{Path: path, Name: "test"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "schema must be re-runnable")
	require.NoError(t, db.HealthCheck(ctx))
	res, err := db.WALCheckpoint(ctx, "")
	require.NoError(t, err)
	assert.False(t, res.Busy)

	var n int
	err = db.Conn().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('assets', 'asset_prices', 'economic_indicators', 'api_usage_logs')").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Equal(t, "test", db.Name())
}

func TestWALCheckpoint_RejectsUnknownMode(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "a.db")})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.WALCheckpoint(context.Background(), "NOW; DROP TABLE assets")
	assert.Error(t, err)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "tx.db")})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))

	boom := errors.New("boom")
	err = WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO assets (symbol, name, asset_type, market, currency, created_at, updated_at)
			VALUES ('SPY', 'SPDR', 'etf', 'us', 'USD', 0, 0)`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM assets").Scan(&n))
	assert.Equal(t, 0, n)

	err = WithTransaction(ctx, db.Conn(), func(tx *sql.Tx) error {
		panic("bad")
	})
	assert.Error(t, err)
}

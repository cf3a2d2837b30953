package universe

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/portfolio-advisor/internal/database"
	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.ApplySchema(context.Background(), db))
	return NewSQLiteStore(db, zerolog.Nop()), db
}

func seededStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, _ := setupTestStore(t)
	_, err := Seed(context.Background(), store)
	require.NoError(t, err)
	return store
}

func day(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func f64(v float64) *float64 { return &v }

func point(date string, close float64) domain.PricePoint {
	return domain.PricePoint{Date: day(date), Close: close}
}

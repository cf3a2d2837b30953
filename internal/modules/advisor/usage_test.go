package advisor

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/portfolio-advisor/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func setupUsageRepo(t *testing.T) *UsageRepository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.ApplySchema(context.Background(), db))
	return NewUsageRepository(db, zerolog.Nop())
}

func newTestTracker(t *testing.T, budget Budget) (*Tracker, *UsageRepository) {
	t.Helper()
	repo := setupUsageRepo(t)
	tracker := NewTracker(repo, budget, zerolog.Nop())
	tracker.now = func() time.Time { return testNow }
	return tracker, repo
}

func insert(t *testing.T, repo UsageStore, at time.Time, in, out int64) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), UsageRecord{
		ID:               at.Format(time.RFC3339Nano),
		Endpoint:         ExplainEndpoint,
		Model:            "gpt-4o-mini",
		InputTokens:      in,
		OutputTokens:     out,
		EstimatedCostUSD: EstimateCost("gpt-4o-mini", in, out),
		CreatedAt:        at,
	}))
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 0.75, EstimateCost("gpt-4o-mini", 1_000_000, 1_000_000), 1e-12)
	assert.InDelta(t, 18.0, EstimateCost("unknown-model", 1_000_000, 1_000_000), 1e-12)
	assert.Equal(t, 0.0, EstimateCost("gpt-4o", 0, 0))
}

func TestUsageRepository_TotalsAndDelete(t *testing.T) {
	repo := setupUsageRepo(t)
	ctx := context.Background()

	empty, err := repo.TotalsSince(ctx, testNow.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, UsageTotals{}, empty)

	insert(t, repo, testNow.AddDate(0, -2, 0), 100, 50)
	insert(t, repo, testNow.Add(-time.Hour), 200, 100)
	insert(t, repo, testNow, 300, 150)

	recent, err := repo.TotalsSince(ctx, testNow.Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(500), recent.InputTokens)
	assert.Equal(t, int64(250), recent.OutputTokens)
	assert.Equal(t, int64(750), recent.TotalTokens())

	deleted, err := repo.DeleteOlderThan(ctx, testNow.AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	all, err := repo.TotalsSince(ctx, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(500), all.InputTokens)
}

func TestTracker_CheckBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("under budget", func(t *testing.T) {
		tracker, repo := newTestTracker(t, Budget{DailyTokens: 1000, MonthlyTokens: 5000})
		insert(t, repo, testNow.Add(-time.Hour), 400, 100)
		assert.NoError(t, tracker.CheckBudget(ctx))
	})

	t.Run("daily budget reached", func(t *testing.T) {
		tracker, repo := newTestTracker(t, Budget{DailyTokens: 1000, MonthlyTokens: 5000})
		insert(t, repo, testNow.Add(-time.Hour), 800, 200)

		err := tracker.CheckBudget(ctx)
		var be *BudgetExceededError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, dailyBudgetMessage, be.Message)
	})

	t.Run("yesterday does not count toward today", func(t *testing.T) {
		tracker, repo := newTestTracker(t, Budget{DailyTokens: 1000, MonthlyTokens: 5000})
		insert(t, repo, testNow.AddDate(0, 0, -1), 800, 200)
		assert.NoError(t, tracker.CheckBudget(ctx))
	})

	t.Run("monthly budget reached", func(t *testing.T) {
		tracker, repo := newTestTracker(t, Budget{DailyTokens: 1000, MonthlyTokens: 2000})
		insert(t, repo, testNow.AddDate(0, 0, -3), 1500, 500)

		err := tracker.CheckBudget(ctx)
		var be *BudgetExceededError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, monthlyBudgetMessage, be.Message)
	})

	t.Run("zero budget disables the check", func(t *testing.T) {
		tracker, repo := newTestTracker(t, Budget{})
		insert(t, repo, testNow, 1_000_000, 1_000_000)
		assert.NoError(t, tracker.CheckBudget(ctx))
	})
}

func TestTracker_RecordAndSummary(t *testing.T) {
	ctx := context.Background()
	tracker, repo := newTestTracker(t, Budget{DailyTokens: 1000, MonthlyTokens: 10000})

	insert(t, repo, time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), 2000, 1000)
	require.NoError(t, tracker.Record(ctx, ExplainEndpoint, "gpt-4o-mini", 600, 300))

	summary, err := tracker.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-15", summary.Daily.Date)
	assert.Equal(t, int64(600), summary.Daily.InputTokens)
	assert.Equal(t, int64(300), summary.Daily.OutputTokens)
	assert.Equal(t, int64(900), summary.Daily.TotalTokens)
	assert.Equal(t, int64(100), summary.Daily.RemainingTokens)
	assert.Equal(t, int64(1000), summary.Daily.BudgetTokens)

	assert.Equal(t, "2024-06", summary.Monthly.Month)
	assert.Equal(t, int64(3900), summary.Monthly.TotalTokens)
	assert.Equal(t, int64(6100), summary.Monthly.RemainingTokens)
	assert.InDelta(t, 0.0012, summary.Monthly.EstimatedCostUSD, 1e-9)
	assert.InDelta(t, 0.0003, summary.Daily.EstimatedCostUSD, 1e-9)
}

func TestTracker_RemainingNeverNegative(t *testing.T) {
	tracker, repo := newTestTracker(t, Budget{DailyTokens: 100, MonthlyTokens: 100})
	insert(t, repo, testNow, 500, 500)

	summary, err := tracker.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Daily.RemainingTokens)
	assert.Equal(t, int64(0), summary.Monthly.RemainingTokens)
}

func TestTracker_Purge(t *testing.T) {
	ctx := context.Background()
	tracker, repo := newTestTracker(t, Budget{})

	insert(t, repo, testNow.AddDate(0, 0, -40), 10, 10)
	insert(t, repo, testNow.AddDate(0, 0, -5), 10, 10)

	n, err := tracker.Purge(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = tracker.Purge(ctx, 0)
	assert.Error(t, err)
}

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/portfolio-advisor/internal/database"
	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/universe"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func setupRouter(t *testing.T) (http.Handler, *universe.SQLiteStore) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.ApplySchema(ctx, db))
	store := universe.NewSQLiteStore(db, zerolog.Nop())
	_, err = universe.Seed(ctx, store)
	require.NoError(t, err)

	h := NewHandler(store, zerolog.Nop())
	h.now = func() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) }
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	return router, store
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleListAssets(t *testing.T) {
	router, store := setupRouter(t)
	ctx := context.Background()

	spy, err := store.GetBySymbol(ctx, "SPY")
	require.NoError(t, err)
	_, err = store.UpsertPrices(ctx, spy.ID, []domain.PricePoint{
		{Date: time.Date(2024, 3, 27, 0, 0, 0, 0, time.UTC), Close: 500},
		{Date: time.Date(2024, 3, 28, 0, 0, 0, 0, time.UTC), Close: 510},
	})
	require.NoError(t, err)

	w := get(t, router, "/assets/?market=us&asset_type=etf&per_page=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))

	var body listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 9, body.Total)
	assert.Equal(t, 2, body.Pages)
	assert.Len(t, body.Items, 5)

	w = get(t, router, "/assets/?search=SPY")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	require.NotNil(t, body.Items[0].LatestPrice)
	assert.Equal(t, "2024-03-28", body.Items[0].LatestPrice.Date)
	require.NotNil(t, body.Items[0].LatestPrice.ChangePct)
	assert.InDelta(t, 0.02, *body.Items[0].LatestPrice.ChangePct, 1e-12)
}

func TestHandleListAssets_InvalidPagination(t *testing.T) {
	router, _ := setupRouter(t)

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/assets/?page=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/assets/?per_page=101").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/assets/?page=abc").Code)
}

func TestHandleGetPrices(t *testing.T) {
	router, store := setupRouter(t)
	ctx := context.Background()

	agg, err := store.GetBySymbol(ctx, "AGG")
	require.NoError(t, err)
	var points []domain.PricePoint
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		points = append(points, domain.PricePoint{Date: start.AddDate(0, 0, i), Close: 100 + float64(i)})
	}
	_, err = store.UpsertPrices(ctx, agg.ID, points)
	require.NoError(t, err)

	w := get(t, router, "/assets/AGG/prices?period=1m")
	require.Equal(t, http.StatusOK, w.Code)
	var body pricesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "1m", body.Period)
	assert.Equal(t, "daily", body.Interval)
	assert.NotEmpty(t, body.DataSourceNote)
	// 2024-03-01 onward; the series ends 2024-02-29
	assert.Empty(t, body.Prices)

	w = get(t, router, "/assets/AGG/prices?period=1y&interval=weekly")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Prices, 12)
	assert.Equal(t, "2024-01-01", body.Prices[0].Date)
	assert.Nil(t, body.Prices[0].Open)
}

func TestHandleGetPrices_UnknownSymbol(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(t, router, "/assets/NOPE/prices")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Asset NOPE not found")
}

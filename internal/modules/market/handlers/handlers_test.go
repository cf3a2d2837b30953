package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/market"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	summary    *market.Summary
	indicators []domain.Indicator
	err        error
}

func (s *stubService) Summary(ctx context.Context) (*market.Summary, error) {
	return s.summary, s.err
}

func (s *stubService) Indicators(ctx context.Context) ([]domain.Indicator, error) {
	return s.indicators, s.err
}

func serve(svc MarketService, path string) *httptest.ResponseRecorder {
	h := NewHandler(svc, zerolog.Nop())
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleSummary(t *testing.T) {
	w := serve(&stubService{summary: &market.Summary{Disclaimer: market.Disclaimer, Indices: []market.IndexData{}}}, "/market/summary")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"indices":[]`)
	assert.Contains(t, w.Body.String(), market.Disclaimer)
}

func TestHandleIndicators(t *testing.T) {
	svc := &stubService{indicators: []domain.Indicator{
		{Type: domain.IndicatorUSDJPY, Name: "USD/JPY", Value: 150, Source: "fred", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}}

	w := serve(svc, "/market/indicators")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"indicator_type":"usd_jpy"`)
	assert.Contains(t, w.Body.String(), `"as_of":"2024-03-01"`)
	assert.Contains(t, w.Body.String(), `"currency":null`)
}

func TestHandleIndicators_Error(t *testing.T) {
	w := serve(&stubService{err: errors.New("db down")}, "/market/indicators")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

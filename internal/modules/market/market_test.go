package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/universe"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndicators struct {
	items []domain.Indicator
	err   error
}

func (f *fakeIndicators) LatestAll(ctx context.Context) ([]domain.Indicator, error) {
	return f.items, f.err
}

type fakeQuotes struct {
	assets map[string]int64
	prices map[int64]*universe.LatestPrice
}

func (f *fakeQuotes) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	id, ok := f.assets[symbol]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Asset{ID: id, Symbol: symbol}, nil
}

func (f *fakeQuotes) LatestPrice(ctx context.Context, assetID int64) (*universe.LatestPrice, error) {
	return f.prices[assetID], nil
}

var asOf = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestService_Summary(t *testing.T) {
	change := 0.01
	svc := NewService(
		&fakeIndicators{items: []domain.Indicator{
			{Type: domain.IndicatorUSTreasury10Y, Value: 4.2, Date: asOf},
			{Type: domain.IndicatorUSDJPY, Value: 150.1, Date: asOf},
			{Type: domain.IndicatorEURJPY, Value: 162.3, Date: asOf},
		}},
		&fakeQuotes{
			assets: map[string]int64{"SPY": 7, "1321.T": 8},
			prices: map[int64]*universe.LatestPrice{7: {Close: 510, ChangePct: &change, Date: asOf}},
		},
		zerolog.Nop(),
	)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, sum.Bonds, 1)
	assert.Equal(t, "us_treasury_10y", sum.Bonds[0].IndicatorType)
	assert.Equal(t, 4.2, *sum.Bonds[0].Value)
	assert.Equal(t, "2024-03-01", *sum.Bonds[0].AsOf)

	require.Len(t, sum.Forex, 2)
	assert.Equal(t, "USD/JPY", sum.Forex[0].Pair)
	assert.Equal(t, 162.3, *sum.Forex[1].Rate)

	require.Len(t, sum.Indices, 1, "1321.T has no prices")
	assert.Equal(t, "SPY", sum.Indices[0].Symbol)
	assert.Equal(t, 510.0, *sum.Indices[0].Value)
	assert.Equal(t, Disclaimer, sum.Disclaimer)
}

func TestService_Summary_Empty(t *testing.T) {
	svc := NewService(&fakeIndicators{}, nil, zerolog.Nop())

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sum.Indices)
	assert.Empty(t, sum.Bonds)
	assert.Empty(t, sum.Forex)
}

func TestService_Summary_IndicatorError(t *testing.T) {
	svc := NewService(&fakeIndicators{err: errors.New("down")}, nil, zerolog.Nop())

	_, err := svc.Summary(context.Background())
	assert.Error(t, err)
}

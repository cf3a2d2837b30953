package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 12, 31, 15, 30, 0, 0, time.UTC)

func newTestService(data map[string]series) *Service {
	svc := NewService(&memoryPrices{data: data}, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func trailing(n int, start, rate float64) series {
	first := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(n - 1))
	return series{dates: dailyDates(first, n), values: growing(n, start, rate)}
}

func TestService_Run(t *testing.T) {
	svc := newTestService(map[string]series{
		"AAA": trailing(400, 100, 0.0008),
		"BBB": trailing(400, 50, -0.0002),
		"SPY": trailing(400, 400, 0.0005),
	})

	res, err := svc.Run(context.Background(), Request{
		Allocations: []TargetWeight{
			{Symbol: "AAA", Weight: 0.6},
			{Symbol: "BBB", Weight: 0.4},
		},
		InitialInvestment: 2_000_000,
		PeriodYears:       3,
		Rebalance:         RebalanceMonthly,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Period.Years)
	assert.Equal(t, "2024-12-31", res.Period.End)
	assert.Equal(t, Disclaimer, res.Disclaimer)
	assert.Equal(t, 2_000_000.0, res.InitialInvestment)
	assert.Greater(t, res.Metrics.FinalValue, 0.0)
	assert.LessOrEqual(t, res.Metrics.MaxDrawdown, 0.0)

	require.NotEmpty(t, res.TimeSeries)
	assert.LessOrEqual(t, len(res.TimeSeries), MaxSeriesPoints+1)
	assert.Equal(t, 2_000_000.0, res.TimeSeries[0].Value)
	assert.Equal(t, 0.0, res.TimeSeries[0].ReturnPct)
	assert.Equal(t, res.Period.End, res.TimeSeries[len(res.TimeSeries)-1].Date)
	assert.Equal(t, 400, res.Values().Len())

	require.Contains(t, res.BenchmarkComparison, "sp500")
	assert.NotContains(t, res.BenchmarkComparison, "nikkei225")
	assert.Greater(t, res.BenchmarkComparison["sp500"].TotalReturn, 0.0)
}

func TestService_Run_Defaults(t *testing.T) {
	svc := newTestService(map[string]series{"AAA": trailing(30, 100, 0.001)})

	res, err := svc.Run(context.Background(), Request{
		Allocations: []TargetWeight{{Symbol: "AAA", Weight: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultPeriodYears, res.Period.Years)
	assert.Equal(t, float64(DefaultInitialInvestment), res.InitialInvestment)
	assert.Nil(t, res.BenchmarkComparison)
}

func TestService_Run_RenormalizesOverAvailableSymbols(t *testing.T) {
	data := map[string]series{"AAA": trailing(120, 100, 0.001)}

	partial, err := newTestService(data).Run(context.Background(), Request{
		Allocations: []TargetWeight{
			{Symbol: "AAA", Weight: 0.5},
			{Symbol: "ZZZ", Weight: 0.5},
		},
	})
	require.NoError(t, err)

	full, err := newTestService(data).Run(context.Background(), Request{
		Allocations: []TargetWeight{{Symbol: "AAA", Weight: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, full.Metrics.FinalValue, partial.Metrics.FinalValue)
}

func TestService_Run_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]series
		allocs  []TargetWeight
		message string
	}{
		{
			name:    "no price data",
			data:    map[string]series{},
			allocs:  []TargetWeight{{Symbol: "AAA", Weight: 1}},
			message: "バックテストに必要な価格データが不足しています。",
		},
		{
			name:    "zero weights",
			data:    map[string]series{"AAA": trailing(30, 100, 0.001)},
			allocs:  []TargetWeight{{Symbol: "AAA", Weight: 0}},
			message: "配分比率の合計が0です。",
		},
		{
			name:    "single day",
			data:    map[string]series{"AAA": trailing(1, 100, 0)},
			allocs:  []TargetWeight{{Symbol: "AAA", Weight: 1}},
			message: "バックテスト期間の価格データが不足しています。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(tt.data).Run(context.Background(), Request{Allocations: tt.allocs})
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestService_Run_IgnoresPricesOutsideWindow(t *testing.T) {
	old := series{
		dates:  dailyDates(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), 100),
		values: growing(100, 100, 0.001),
	}
	svc := newTestService(map[string]series{"AAA": old})

	_, err := svc.Run(context.Background(), Request{
		Allocations: []TargetWeight{{Symbol: "AAA", Weight: 1}},
		PeriodYears: 1,
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestBenchmarkReturn(t *testing.T) {
	res, ok := BenchmarkReturn([]float64{100, 105, 110})
	require.True(t, ok)
	assert.InDelta(t, 0.1, res.TotalReturn, 1e-12)
	assert.Greater(t, res.CAGR, 0.0)

	_, ok = BenchmarkReturn([]float64{100})
	assert.False(t, ok)

	_, ok = BenchmarkReturn([]float64{0, 10, 20})
	assert.False(t, ok)

	_, ok = BenchmarkReturn(nil)
	assert.False(t, ok)
}

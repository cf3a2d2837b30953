package optimization

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingIndicators struct {
	indicator *domain.Indicator
	err       error
	mu        sync.Mutex
	calls     int
}

func (c *countingIndicators) Latest(ctx context.Context, t domain.IndicatorType) (*domain.Indicator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.indicator, c.err
}

func TestRiskFreeRateSource_ConvertsPercent(t *testing.T) {
	src := NewRiskFreeRateSource(&countingIndicators{indicator: &domain.Indicator{Value: 4.5}}, time.Hour, zerolog.Nop())

	rate, err := src.Rate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.045, rate, 1e-12)
}

func TestRiskFreeRateSource_DefaultsWhenMissing(t *testing.T) {
	src := NewRiskFreeRateSource(&countingIndicators{}, time.Hour, zerolog.Nop())

	rate, err := src.Rate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultRiskFreeRate, rate)
}

func TestRiskFreeRateSource_CachesForTTL(t *testing.T) {
	ind := &countingIndicators{indicator: &domain.Indicator{Value: 4.0}}
	src := NewRiskFreeRateSource(ind, time.Hour, zerolog.Nop())
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := src.Rate(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, ind.calls)

	now = now.Add(2 * time.Hour)
	_, err := src.Rate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ind.calls)
}

func TestRiskFreeRateSource_NoCache(t *testing.T) {
	ind := &countingIndicators{indicator: &domain.Indicator{Value: 4.0}}
	src := NewRiskFreeRateSource(ind, 0, zerolog.Nop())

	_, _ = src.Rate(context.Background())
	_, _ = src.Rate(context.Background())
	assert.Equal(t, 2, ind.calls)
}

func TestRiskFreeRateSource_PropagatesErrors(t *testing.T) {
	src := NewRiskFreeRateSource(&countingIndicators{err: errors.New("boom")}, time.Hour, zerolog.Nop())

	_, err := src.Rate(context.Background())
	assert.Error(t, err)
}

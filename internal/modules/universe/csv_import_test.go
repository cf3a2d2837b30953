package universe

import (
	"context"
	"strings"
	"testing"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceImporter_Import(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	csv := strings.Join([]string{
		"symbol,date,open,high,low,close,adj_close,volume",
		"SPY,2024-01-03,101,102,100,101.5,101.2,1000",
		"SPY,2024-01-02,99,101,98,100,,",
		"SPY,2024-01-04,100,99,101,100,,",    // high below low
		"AGG,not-a-date,1,1,1,1,,",           // malformed
		"XXXX,2024-01-02,1,1,1,1,,",          // unknown symbol
		"AGG,2024-01-02,,,,95,,",
	}, "\n")

	imp := NewPriceImporter(store, store, zerolog.Nop())
	res, err := imp.Import(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 6, res.Rows)
	assert.Equal(t, 3, res.Imported)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, []string{"XXXX"}, res.UnknownSymbols)

	spy, err := store.GetBySymbol(ctx, "SPY")
	require.NoError(t, err)
	prices, err := store.Prices(ctx, spy.ID, day("2024-01-01"))
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, 100.0, prices[0].Close)
	assert.Nil(t, prices[0].AdjClose)
	require.NotNil(t, prices[1].AdjClose)
	assert.Equal(t, 101.2, *prices[1].AdjClose)
	require.NotNil(t, prices[1].Volume)
	assert.Equal(t, int64(1000), *prices[1].Volume)
}

func TestPriceImporter_MissingColumn(t *testing.T) {
	store := seededStore(t)
	imp := NewPriceImporter(store, store, zerolog.Nop())

	_, err := imp.Import(context.Background(), strings.NewReader("symbol,date,open\nSPY,2024-01-02,1\n"))
	assert.Error(t, err)
}

func TestPriceValidator(t *testing.T) {
	v := NewPriceValidator(zerolog.Nop())

	tests := []struct {
		name   string
		p      domain.PricePoint
		prev   float64
		reason string
	}{
		{"valid", domain.PricePoint{Close: 10, High: f64(11), Low: f64(9), Open: f64(10)}, 10, ""},
		{"zero close", domain.PricePoint{Close: 0}, 0, "non_positive_close"},
		{"high below low", domain.PricePoint{Close: 10, High: f64(9), Low: f64(11)}, 0, "high_below_low"},
		{"high below close", domain.PricePoint{Close: 10, High: f64(9.5)}, 0, "high_below_close"},
		{"low above open", domain.PricePoint{Close: 10, Low: f64(9.5), Open: f64(9)}, 0, "low_above_open"},
		{"spike", domain.PricePoint{Close: 200}, 10, "spike_detected"},
		{"crash", domain.PricePoint{Close: 0.5}, 10, "crash_detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := v.ValidatePrice(tt.p, tt.prev)
			assert.Equal(t, tt.reason == "", ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

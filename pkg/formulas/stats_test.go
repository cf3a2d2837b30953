package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateReturns(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		expected []float64
	}{
		{"empty", nil, []float64{}},
		{"single price", []float64{100}, []float64{}},
		{"rising", []float64{100, 110, 121}, []float64{0.10, 0.10}},
		{"zero base yields zero", []float64{0, 10}, []float64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateReturns(tt.prices)
			assert.Len(t, got, len(tt.expected))
			for i := range tt.expected {
				assert.InDelta(t, tt.expected[i], got[i], 1e-12)
			}
		})
	}
}

func TestStdDev_UsesSampleDenominator(t *testing.T) {
	// Sample std of {2,4,4,4,5,5,7,9} is sqrt(32/7)
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev(data), 1e-12)
	assert.True(t, math.IsNaN(StdDev([]float64{1})))
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01}
	expected := StdDev(returns) * math.Sqrt(252)
	assert.InDelta(t, expected, AnnualizedVolatility(returns), 1e-12)
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{0.01}))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.1235, Round(0.123456, 4))
	assert.Equal(t, 1234568.0, Round(1234567.89, 0))
	assert.Equal(t, 2.0, Round(2.5, 0))
	assert.Equal(t, -0.0512, Round(-0.05123, 4))
}

func TestCovarianceAndCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}

	assert.InDelta(t, 1.0, Correlation(x, y), 1e-12)
	assert.InDelta(t, 2*Variance(x), Covariance(x, y), 1e-12)
	assert.Equal(t, 0.0, Covariance(x, []float64{1}))
}

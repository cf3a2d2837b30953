package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSharpeRatio(t *testing.T) {
	returns := []float64{0.01, 0.02, -0.005, 0.015}
	sd := StdDev(returns)
	expected := (Mean(returns) - 0.04/252) / sd * math.Sqrt(252)

	assert.InDelta(t, expected, CalculateSharpeRatio(returns, 0.04), 1e-12)
	assert.Equal(t, 0.0, CalculateSharpeRatio([]float64{0, 0, 0}, 0.04))
	assert.Equal(t, 0.0, CalculateSharpeRatio([]float64{0.01}, 0.04))
}

func TestCalculateSortinoRatio(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.01, -0.03}
	downside := []float64{-0.01, -0.03}
	expected := (0.12 - 0.04) / (StdDev(downside) * math.Sqrt(252))

	assert.InDelta(t, expected, CalculateSortinoRatio(0.12, returns, 0.04), 1e-12)
}

func TestCalculateSortinoRatio_InsufficientDownside(t *testing.T) {
	assert.Equal(t, 0.0, CalculateSortinoRatio(0.1, []float64{0.01, 0.02}, 0.04))
	assert.Equal(t, 0.0, CalculateSortinoRatio(0.1, []float64{0.01, -0.02}, 0.04))
}

func TestCalculateCalmarRatio(t *testing.T) {
	assert.InDelta(t, 0.5, CalculateCalmarRatio(0.1, -0.2), 1e-12)
	assert.Equal(t, 0.0, CalculateCalmarRatio(0.1, 0))
}

func TestCalculateCAGR(t *testing.T) {
	// One year of observations that doubled
	assert.InDelta(t, 1.0, CalculateCAGR(100, 200, 252), 1e-12)
	// Two years: sqrt(4) - 1
	assert.InDelta(t, 1.0, CalculateCAGR(100, 400, 504), 1e-12)
	assert.Equal(t, 0.0, CalculateCAGR(0, 100, 252))
	assert.Equal(t, 0.0, CalculateCAGR(100, 200, 0))
}

func TestTotalReturn(t *testing.T) {
	assert.InDelta(t, 0.25, TotalReturn(100, 125), 1e-12)
	assert.Equal(t, 0.0, TotalReturn(0, 125))
}

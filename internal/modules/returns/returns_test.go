package returns

import (
	"math"
	"testing"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(n int) []time.Time {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestFilterMinObservations(t *testing.T) {
	nan := math.NaN()
	m := domain.PriceMatrix{
		Dates:   dates(4),
		Symbols: []string{"A", "B", "C"},
		Columns: map[string][]float64{
			"A": {1, 2, 3, 4},
			"B": {nan, nan, 3, 4},
			"C": {1, nan, 3, 4},
		},
	}

	out := FilterMinObservations(m, 3)
	assert.Equal(t, []string{"A", "C"}, out.Symbols)
}

func TestClean_ForwardFillsThenDropsLeadingGaps(t *testing.T) {
	nan := math.NaN()
	m := domain.PriceMatrix{
		Dates:   dates(5),
		Symbols: []string{"A", "B"},
		Columns: map[string][]float64{
			"A": {10, 11, nan, 13, 14},
			"B": {nan, 20, 21, nan, 23},
		},
	}

	out := Clean(m)
	require.Equal(t, 4, out.Len())
	assert.Equal(t, m.Dates[1], out.Dates[0])
	assert.Equal(t, []float64{11, 11, 13, 14}, out.Columns["A"])
	assert.Equal(t, []float64{20, 21, 21, 23}, out.Columns["B"])
}

func TestDailyReturns(t *testing.T) {
	m := domain.PriceMatrix{
		Dates:   dates(3),
		Symbols: []string{"A"},
		Columns: map[string][]float64{"A": {100, 110, 99}},
	}

	r := DailyReturns(m)
	require.Equal(t, 2, r.Rows())
	assert.Equal(t, m.Dates[1], r.Dates[0])
	assert.InDelta(t, 0.10, r.Columns[0][0], 1e-12)
	assert.InDelta(t, -0.10, r.Columns[0][1], 1e-12)

	short := DailyReturns(domain.PriceMatrix{Dates: dates(1), Symbols: []string{"A"}, Columns: map[string][]float64{"A": {1}}})
	assert.Equal(t, 0, short.Rows())
}

func TestAnnualizedMean(t *testing.T) {
	r := Matrix{
		Dates:   dates(2),
		Symbols: []string{"A", "B"},
		Columns: [][]float64{{0.01, 0.03}, {0, 0}},
	}
	mu := AnnualizedMean(r)
	assert.InDelta(t, 0.02*252, mu[0], 1e-12)
	assert.Equal(t, 0.0, mu[1])
}

func sampleReturns() Matrix {
	a := []float64{0.010, -0.020, 0.015, 0.003, -0.007, 0.012, -0.004, 0.008, -0.011, 0.006}
	b := []float64{0.004, -0.010, 0.012, 0.001, -0.002, 0.009, -0.006, 0.002, -0.008, 0.005}
	c := []float64{-0.003, 0.006, -0.001, 0.002, 0.004, -0.005, 0.003, -0.002, 0.001, 0.000}
	return Matrix{Dates: dates(len(a)), Symbols: []string{"A", "B", "C"}, Columns: [][]float64{a, b, c}}
}

func TestSampleCovariance_Symmetric(t *testing.T) {
	cov := SampleCovariance(sampleReturns())
	require.Len(t, cov, 3)
	for i := range cov {
		assert.Greater(t, cov[i][i], 0.0)
		for j := range cov {
			assert.InDelta(t, cov[i][j], cov[j][i], 1e-15)
		}
	}

	annual := AnnualizedCovariance(sampleReturns())
	assert.InDelta(t, cov[0][1]*252, annual[0][1], 1e-12)
}

func TestLedoitWolf(t *testing.T) {
	r := sampleReturns()
	n := float64(r.Rows())

	shrunk, s := LedoitWolf(r)
	sample := SampleCovariance(r)

	assert.GreaterOrEqual(t, s, 0.0)
	assert.LessOrEqual(t, s, 1.0)

	// The identity target preserves total variance.
	traceShrunk, traceSample := 0.0, 0.0
	for i := range shrunk {
		traceShrunk += shrunk[i][i]
		traceSample += sample[i][i] * (n - 1) / n * 252
	}
	assert.InDelta(t, traceSample, traceShrunk, 1e-10)

	for i := range shrunk {
		for j := range shrunk {
			assert.InDelta(t, shrunk[i][j], shrunk[j][i], 1e-15)
			if i != j {
				emp := sample[i][j] * (n - 1) / n * 252
				assert.InDelta(t, (1-s)*emp, shrunk[i][j], 1e-12)
			}
		}
	}
}

func TestLedoitWolf_SingleAssetHasNoShrinkage(t *testing.T) {
	r := Matrix{Dates: dates(4), Symbols: []string{"A"}, Columns: [][]float64{{0.01, -0.02, 0.03, 0}}}
	cov, s := LedoitWolf(r)
	assert.Equal(t, 0.0, s)
	assert.Greater(t, cov[0][0], 0.0)
}

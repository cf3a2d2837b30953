package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleTimeSeries_Downsamples(t *testing.T) {
	values := growing(500, 1_000_000, 0.001)
	pv := ValueSeries{Dates: dailyDates(day0, 500), Values: values}

	points := SampleTimeSeries(pv, 1_000_000)

	assert.LessOrEqual(t, len(points), 251)
	assert.Equal(t, 0.0, points[0].ReturnPct)
	assert.Equal(t, pv.Dates[499].Format("2006-01-02"), points[len(points)-1].Date)
}

func TestSampleTimeSeries_ShortSeriesKeepsEveryPoint(t *testing.T) {
	pv := ValueSeries{Dates: dailyDates(day0, 10), Values: growing(10, 100, 0.01)}

	points := SampleTimeSeries(pv, 100)
	require.Len(t, points, 10)
	assert.Equal(t, 100.0, points[0].Value)
}

func TestSampleTimeSeries_AppendsFinalPoint(t *testing.T) {
	// step 2 over 502 points stops at index 500
	pv := ValueSeries{Dates: dailyDates(day0, 502), Values: growing(502, 100, 0.001)}

	points := SampleTimeSeries(pv, 100)
	require.Len(t, points, 252)
	assert.Equal(t, pv.Dates[501].Format("2006-01-02"), points[251].Date)
}

func TestAnnualReturns(t *testing.T) {
	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	n := 3 * 365
	pv := ValueSeries{Dates: dailyDates(start, n), Values: growing(n, 100, 0.0005)}

	annual := AnnualReturns(pv)

	require.Len(t, annual, 4)
	for i, a := range annual {
		assert.Equal(t, 2021+i, a.Year)
		assert.Greater(t, a.ReturnPct, 0.0)
	}
}

func TestAnnualReturns_SkipsSinglePointYears(t *testing.T) {
	pv := ValueSeries{
		Dates: []time.Time{
			time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC),
			time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		Values: []float64{100, 110, 120},
	}

	annual := AnnualReturns(pv)
	require.Len(t, annual, 1)
	assert.Equal(t, 2022, annual[0].Year)
	assert.InDelta(t, 0.1, annual[0].ReturnPct, 1e-12)
}

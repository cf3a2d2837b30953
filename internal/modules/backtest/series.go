package backtest

import "github.com/aristath/portfolio-advisor/pkg/formulas"

// MaxSeriesPoints is the target size of a sampled time series.
const MaxSeriesPoints = 250

// TimeSeriesPoint is one sampled portfolio value
type TimeSeriesPoint struct {
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	ReturnPct float64 `json:"return_pct"`
}

// AnnualReturn is the return of one calendar year
type AnnualReturn struct {
	Year      int     `json:"year"`
	ReturnPct float64 `json:"return_pct"`
}

// SampleTimeSeries keeps every step-th point with step = max(1, n/250) and
// always includes the final point.
func SampleTimeSeries(pv ValueSeries, initial float64) []TimeSeriesPoint {
	n := pv.Len()
	if n == 0 {
		return []TimeSeriesPoint{}
	}
	step := n / MaxSeriesPoints
	if step < 1 {
		step = 1
	}

	point := func(i int) TimeSeriesPoint {
		v := pv.Values[i]
		return TimeSeriesPoint{
			Date:      pv.Dates[i].Format(dateLayout),
			Value:     formulas.Round(v, 0),
			ReturnPct: formulas.Round(formulas.TotalReturn(initial, v), 4),
		}
	}

	out := make([]TimeSeriesPoint, 0, n/step+2)
	last := -1
	for i := 0; i < n; i += step {
		out = append(out, point(i))
		last = i
	}
	if last != n-1 {
		out = append(out, point(n-1))
	}
	return out
}

// AnnualReturns computes (last - first) / first for every calendar year with
// at least two points.
func AnnualReturns(pv ValueSeries) []AnnualReturn {
	out := []AnnualReturn{}
	n := pv.Len()
	for i := 0; i < n; {
		year := pv.Dates[i].Year()
		j := i
		for j+1 < n && pv.Dates[j+1].Year() == year {
			j++
		}
		if j > i {
			first, last := pv.Values[i], pv.Values[j]
			ret := 0.0
			if first > 0 {
				ret = (last - first) / first
			}
			out = append(out, AnnualReturn{Year: year, ReturnPct: formulas.Round(ret, 4)})
		}
		i = j + 1
	}
	return out
}

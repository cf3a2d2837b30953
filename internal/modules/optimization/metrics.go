package optimization

import (
	"math"

	"github.com/aristath/portfolio-advisor/internal/modules/returns"
	"github.com/aristath/portfolio-advisor/pkg/formulas"
)

// Metrics are the annualized risk/return figures of a weight set, rounded to
// four decimals. Fields are nil when no weighted symbol has return data.
type Metrics struct {
	ExpectedReturn *float64 `json:"expected_return"`
	Volatility     *float64 `json:"volatility"`
	SharpeRatio    *float64 `json:"sharpe_ratio"`
}

// CalculateMetrics evaluates weights against daily returns. Symbols missing
// from r are ignored and the remaining weights renormalized.
func CalculateMetrics(weights Weights, r returns.Matrix, riskFreeRate float64) Metrics {
	cols := make(map[string]int, len(r.Symbols))
	for j, s := range r.Symbols {
		cols[s] = j
	}

	var sub returns.Matrix
	sub.Dates = r.Dates
	var w []float64
	for _, sw := range weights.Sorted() {
		j, ok := cols[sw.Symbol]
		if !ok {
			continue
		}
		sub.Symbols = append(sub.Symbols, sw.Symbol)
		sub.Columns = append(sub.Columns, r.Columns[j])
		w = append(w, sw.Weight)
	}
	if len(w) == 0 {
		return Metrics{}
	}

	total := 0.0
	for _, v := range w {
		total += v
	}
	if total <= 0 {
		return Metrics{}
	}
	for i := range w {
		w[i] /= total
	}

	mu := returns.AnnualizedMean(sub)
	cov := returns.AnnualizedCovariance(sub)

	expected := dot(w, mu)
	variance := 0.0
	for i := range w {
		for j := range w {
			variance += w[i] * cov[i][j] * w[j]
		}
	}
	vol := math.Sqrt(math.Max(variance, 0))
	sharpe := 0.0
	if vol > 0 {
		sharpe = (expected - riskFreeRate) / vol
	}

	return Metrics{
		ExpectedReturn: roundPtr(expected),
		Volatility:     roundPtr(vol),
		SharpeRatio:    roundPtr(sharpe),
	}
}

func roundPtr(v float64) *float64 {
	r := formulas.Round(v, 4)
	return &r
}

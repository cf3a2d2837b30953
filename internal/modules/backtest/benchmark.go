package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aristath/portfolio-advisor/pkg/formulas"
)

// Benchmark is a reference index tracked by an ETF symbol
type Benchmark struct {
	Name   string
	Symbol string
}

// DefaultBenchmarks tracks one broad index per market.
var DefaultBenchmarks = []Benchmark{
	{Name: "nikkei225", Symbol: "1321.T"},
	{Name: "sp500", Symbol: "SPY"},
}

// BenchmarkResult is a benchmark's performance over the backtest window
type BenchmarkResult struct {
	TotalReturn float64 `json:"total_return"`
	CAGR        float64 `json:"cagr"`
}

// BenchmarkReturn computes total return and CAGR of a single price column.
// It reports false when fewer than two prices exist or the first is not positive.
func BenchmarkReturn(prices []float64) (BenchmarkResult, bool) {
	clean := make([]float64, 0, len(prices))
	for _, p := range prices {
		if !math.IsNaN(p) {
			clean = append(clean, p)
		}
	}
	if len(clean) < 2 || clean[0] <= 0 {
		return BenchmarkResult{}, false
	}
	first, last := clean[0], clean[len(clean)-1]
	return BenchmarkResult{
		TotalReturn: formulas.Round(formulas.TotalReturn(first, last), 4),
		CAGR:        formulas.Round(formulas.CalculateCAGR(first, last, len(clean)), 4),
	}, true
}

func (s *Service) compareBenchmarks(ctx context.Context, start, end time.Time) (map[string]BenchmarkResult, error) {
	out := make(map[string]BenchmarkResult)
	for _, b := range s.benchmarks {
		m, err := s.prices.PriceMatrix(ctx, []string{b.Symbol}, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to load benchmark %s: %w", b.Symbol, err)
		}
		res, ok := BenchmarkReturn(m.Columns[b.Symbol])
		if !ok {
			s.log.Debug().Str("benchmark", b.Name).Msg("Skipping benchmark without enough data")
			continue
		}
		out[b.Name] = res
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

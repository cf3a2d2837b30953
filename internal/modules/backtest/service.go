package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/returns"
	"github.com/rs/zerolog"
)

// Disclaimer accompanies every backtest result.
const Disclaimer = "※ 過去のパフォーマンスは将来の結果を保証するものではありません。" +
	"バックテストは仮想的なシミュレーションであり、" +
	"実際の取引コスト・税金は考慮されていません。"

// Defaults applied to omitted request fields.
const (
	DefaultPeriodYears       = 5
	DefaultInitialInvestment = 1_000_000
)

// TargetWeight is one requested allocation
type TargetWeight struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// Request describes one backtest run
type Request struct {
	Rebalance         RebalanceFrequency
	Allocations       []TargetWeight
	InitialInvestment float64
	PeriodYears       int
}

// Period is the simulated window
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Years int    `json:"years"`
}

// Result is the full backtest report
type Result struct {
	BenchmarkComparison map[string]BenchmarkResult `json:"benchmark_comparison"`
	Period              Period                     `json:"period"`
	Disclaimer          string                     `json:"disclaimer"`
	TimeSeries          []TimeSeriesPoint          `json:"time_series"`
	AnnualReturns       []AnnualReturn             `json:"annual_returns"`
	Metrics             Metrics                    `json:"metrics"`
	InitialInvestment   float64                    `json:"initial_investment"`
	values              ValueSeries
}

// Values returns the unsampled simulated series
func (r *Result) Values() ValueSeries {
	return r.values
}

// Service runs backtests against stored prices
type Service struct {
	prices     domain.PriceMatrixProvider
	now        func() time.Time
	benchmarks []Benchmark
	log        zerolog.Logger
}

// NewService creates a backtest service
func NewService(prices domain.PriceMatrixProvider, log zerolog.Logger) *Service {
	return &Service{
		prices:     prices,
		now:        time.Now,
		benchmarks: DefaultBenchmarks,
		log:        log.With().Str("component", "backtest").Logger(),
	}
}

// Run simulates the allocation over the trailing window ending today.
// Data shortfalls are reported as domain.ValidationError.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.PeriodYears <= 0 {
		req.PeriodYears = DefaultPeriodYears
	}
	if req.InitialInvestment <= 0 {
		req.InitialInvestment = DefaultInitialInvestment
	}
	if req.Rebalance == "" {
		req.Rebalance = RebalanceQuarterly
	}

	y, m, d := s.now().Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -req.PeriodYears*365)

	symbols := make([]string, 0, len(req.Allocations))
	targets := make(map[string]float64, len(req.Allocations))
	for _, a := range req.Allocations {
		if _, dup := targets[a.Symbol]; !dup {
			symbols = append(symbols, a.Symbol)
		}
		targets[a.Symbol] = a.Weight
	}

	prices, err := s.prices.PriceMatrix(ctx, symbols, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load price matrix: %w", err)
	}
	if prices.Len() == 0 || len(prices.Symbols) == 0 {
		return nil, domain.NewValidationError("バックテストに必要な価格データが不足しています。")
	}

	available := make([]string, 0, len(symbols))
	total := 0.0
	for _, sym := range symbols {
		if prices.Has(sym) {
			available = append(available, sym)
			total += targets[sym]
		}
	}
	if len(available) == 0 {
		return nil, domain.NewValidationError("価格データのある銘柄が見つかりませんでした。")
	}
	if total <= 0 {
		return nil, domain.NewValidationError("配分比率の合計が0です。")
	}
	weights := make([]float64, len(available))
	for i, sym := range available {
		weights[i] = targets[sym] / total
	}

	cleaned := returns.Clean(prices.Select(available))
	if cleaned.Len() < 2 {
		return nil, domain.NewValidationError("バックテスト期間の価格データが不足しています。")
	}

	pv, err := Simulate(cleaned, available, weights, req.InitialInvestment, req.Rebalance.IntervalDays())
	if err != nil {
		return nil, fmt.Errorf("failed to simulate portfolio: %w", err)
	}

	benchmarks, err := s.compareBenchmarks(ctx, start, end)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("assets", len(available)).
		Int("days", pv.Len()).
		Str("rebalance", string(req.Rebalance)).
		Msg("Backtest completed")

	return &Result{
		Period: Period{
			Start: pv.Dates[0].Format(dateLayout),
			End:   pv.Dates[pv.Len()-1].Format(dateLayout),
			Years: req.PeriodYears,
		},
		InitialInvestment:   req.InitialInvestment,
		Metrics:             ComputeMetrics(pv, req.InitialInvestment),
		BenchmarkComparison: benchmarks,
		TimeSeries:          SampleTimeSeries(pv, req.InitialInvestment),
		AnnualReturns:       AnnualReturns(pv),
		Disclaimer:          Disclaimer,
		values:              pv,
	}, nil
}

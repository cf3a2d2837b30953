package backtest

import (
	"github.com/aristath/portfolio-advisor/pkg/formulas"
)

// BacktestRiskFreeRate is the fixed annual rate used for Sharpe and Sortino.
const BacktestRiskFreeRate = 0.04

const dateLayout = "2006-01-02"

// DrawdownPeriod bounds the worst peak-to-trough decline
type DrawdownPeriod struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// Metrics summarizes a simulated run. Ratios are rounded to four decimals and
// the final value to a whole unit.
type Metrics struct {
	MaxDrawdownPeriod *DrawdownPeriod `json:"max_drawdown_period"`
	FinalValue        float64         `json:"final_value"`
	TotalReturn       float64         `json:"total_return"`
	CAGR              float64         `json:"cagr"`
	Volatility        float64         `json:"volatility"`
	SharpeRatio       float64         `json:"sharpe_ratio"`
	MaxDrawdown       float64         `json:"max_drawdown"`
	SortinoRatio      float64         `json:"sortino_ratio"`
	CalmarRatio       float64         `json:"calmar_ratio"`
}

// ComputeMetrics derives return and risk figures from a value series
func ComputeMetrics(pv ValueSeries, initial float64) Metrics {
	n := pv.Len()
	if n == 0 {
		return Metrics{}
	}
	final := pv.Values[n-1]

	daily := formulas.CalculateReturns(pv.Values)
	cagr := formulas.CalculateCAGR(initial, final, n)
	dd := formulas.CalculateDrawdownPeriod(pv.Values)

	start := pv.Dates[dd.PeakIndex].Format(dateLayout)
	end := pv.Dates[dd.TroughIndex].Format(dateLayout)

	return Metrics{
		FinalValue:        formulas.Round(final, 0),
		TotalReturn:       formulas.Round(formulas.TotalReturn(initial, final), 4),
		CAGR:              formulas.Round(cagr, 4),
		Volatility:        formulas.Round(formulas.AnnualizedVolatility(daily), 4),
		SharpeRatio:       formulas.Round(formulas.CalculateSharpeRatio(daily, BacktestRiskFreeRate), 4),
		MaxDrawdown:       formulas.Round(dd.MaxDrawdown, 4),
		MaxDrawdownPeriod: &DrawdownPeriod{Start: &start, End: &end},
		SortinoRatio:      formulas.Round(formulas.CalculateSortinoRatio(cagr, daily, BacktestRiskFreeRate), 4),
		CalmarRatio:       formulas.Round(formulas.CalculateCalmarRatio(cagr, dd.MaxDrawdown), 4),
	}
}

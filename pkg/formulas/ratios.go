package formulas

import "math"

// CalculateSharpeRatio returns the annualized Sharpe ratio of daily returns
// against an annual risk-free rate: mean(r - rf/252) / std(r) * sqrt(252).
// Zero or undefined deviation yields 0.
func CalculateSharpeRatio(dailyReturns []float64, annualRiskFree float64) float64 {
	sd := StdDev(dailyReturns)
	if math.IsNaN(sd) || sd <= 0 {
		return 0
	}

	dailyRiskFree := annualRiskFree / TradingDaysPerYear
	excess := make([]float64, len(dailyReturns))
	for i, r := range dailyReturns {
		excess[i] = r - dailyRiskFree
	}

	return Mean(excess) / sd * math.Sqrt(TradingDaysPerYear)
}

// CalculateSortinoRatio relates an annual growth rate in excess of the
// risk-free rate to the annualized deviation of the negative daily returns.
// Fewer than two negative days leave the deviation undefined and yield 0.
func CalculateSortinoRatio(annualReturn float64, dailyReturns []float64, annualRiskFree float64) float64 {
	downside := make([]float64, 0, len(dailyReturns))
	for _, r := range dailyReturns {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	sd := StdDev(downside)
	if math.IsNaN(sd) {
		return 0
	}
	downsideDev := sd * math.Sqrt(TradingDaysPerYear)
	if downsideDev <= 0 {
		return 0
	}

	return (annualReturn - annualRiskFree) / downsideDev
}

// CalculateCalmarRatio returns CAGR / |max drawdown|, or 0 without a drawdown.
func CalculateCalmarRatio(cagr, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return cagr / math.Abs(maxDrawdown)
}

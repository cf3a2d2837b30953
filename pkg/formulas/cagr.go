package formulas

import "math"

// CalculateCAGR calculates the compound annual growth rate of a series that
// spans observations daily points: (end/start)^(1/years) - 1 with
// years = observations / 252.
func CalculateCAGR(start, end float64, observations int) float64 {
	if start <= 0 || observations <= 0 {
		return 0
	}
	years := float64(observations) / TradingDaysPerYear
	return math.Pow(end/start, 1/years) - 1
}

// TotalReturn returns (end - start) / start, or 0 for a non-positive start.
func TotalReturn(start, end float64) float64 {
	if start <= 0 {
		return 0
	}
	return (end - start) / start
}

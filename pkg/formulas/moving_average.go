package formulas

import (
	"github.com/markcheno/go-talib"
)

// MovingAverage returns a simple moving average aligned to values.
// Points inside the lookback window carry the raw value so the output can be
// plotted as a continuous line next to the input.
func MovingAverage(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if period <= 1 || len(values) < period {
		return out
	}

	sma := talib.Sma(values, period)
	for i := period - 1; i < len(values) && i < len(sma); i++ {
		if !isNaN(sma[i]) {
			out[i] = sma[i]
		}
	}
	return out
}

func isNaN(f float64) bool {
	return f != f
}

package formulas

// DrawdownPeriod describes the worst peak-to-trough decline of a value series.
type DrawdownPeriod struct {
	MaxDrawdown float64 // (trough - peak) / peak, always <= 0
	PeakIndex   int     // index of the running maximum preceding the trough
	TroughIndex int     // index of the deepest drawdown
}

// CalculateDrawdownPeriod computes the maximum drawdown of a value series.
//
// Drawdown at i is (v[i] - max(v[0..i])) / max(v[0..i]). The trough is the first
// index with the minimum drawdown; the peak is the first index of the highest
// value at or before the trough, so PeakIndex <= TroughIndex always holds.
func CalculateDrawdownPeriod(values []float64) DrawdownPeriod {
	if len(values) == 0 {
		return DrawdownPeriod{}
	}

	result := DrawdownPeriod{}
	runningMax := values[0]
	for i, v := range values {
		if v > runningMax {
			runningMax = v
		}
		if runningMax <= 0 {
			continue
		}
		dd := (v - runningMax) / runningMax
		if dd < result.MaxDrawdown {
			result.MaxDrawdown = dd
			result.TroughIndex = i
		}
	}

	peak := 0
	for i := 0; i <= result.TroughIndex; i++ {
		if values[i] > values[peak] {
			peak = i
		}
	}
	result.PeakIndex = peak

	return result
}

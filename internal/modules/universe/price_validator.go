package universe

import (
	"math"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
)

const (
	maxPriceChangePercent = 1000.0 // >1000% change is a spike
	minPriceChangePercent = -90.0  // <-90% change is a crash
)

// PriceValidator rejects price rows that cannot be real trading data
type PriceValidator struct {
	log zerolog.Logger
}

// NewPriceValidator creates a new price validator
func NewPriceValidator(log zerolog.Logger) *PriceValidator {
	return &PriceValidator{
		log: log.With().Str("component", "price_validator").Logger(),
	}
}

// ValidatePrice checks a price against OHLC consistency and, when prevClose
// is positive, against a day-over-day spike or crash.
// Returns (isValid, reason).
func (v *PriceValidator) ValidatePrice(p domain.PricePoint, prevClose float64) (bool, string) {
	if p.Close <= 0 || math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
		return false, "non_positive_close"
	}
	if p.AdjClose != nil && *p.AdjClose < 0 {
		return false, "negative_adj_close"
	}
	if p.Volume != nil && *p.Volume < 0 {
		return false, "negative_volume"
	}

	if p.High != nil && p.Low != nil && *p.High < *p.Low {
		return false, "high_below_low"
	}
	if p.High != nil {
		if *p.High < p.Close {
			return false, "high_below_close"
		}
		if p.Open != nil && *p.High < *p.Open {
			return false, "high_below_open"
		}
	}
	if p.Low != nil {
		if *p.Low > p.Close {
			return false, "low_above_close"
		}
		if p.Open != nil && *p.Low > *p.Open {
			return false, "low_above_open"
		}
	}

	if prevClose > 0 {
		changePercent := (p.Close - prevClose) / prevClose * 100.0
		if changePercent > maxPriceChangePercent {
			return false, "spike_detected"
		}
		if changePercent < minPriceChangePercent {
			return false, "crash_detected"
		}
	}

	return true, ""
}

// Package backtest replays fixed target weights over historical prices.
package backtest

import (
	"fmt"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
)

// RebalanceFrequency controls how often holdings are reset to target weights
type RebalanceFrequency string

const (
	RebalanceMonthly   RebalanceFrequency = "monthly"
	RebalanceQuarterly RebalanceFrequency = "quarterly"
	RebalanceAnnually  RebalanceFrequency = "annually"
	RebalanceNone      RebalanceFrequency = "none"
)

// Valid reports whether f is a known frequency
func (f RebalanceFrequency) Valid() bool {
	switch f {
	case RebalanceMonthly, RebalanceQuarterly, RebalanceAnnually, RebalanceNone:
		return true
	}
	return false
}

// IntervalDays returns the rebalance interval in trading rows. Zero disables
// rebalancing; unknown frequencies rebalance quarterly.
func (f RebalanceFrequency) IntervalDays() int {
	switch f {
	case RebalanceMonthly:
		return 30
	case RebalanceQuarterly:
		return 90
	case RebalanceAnnually:
		return 365
	case RebalanceNone:
		return 0
	default:
		return 90
	}
}

// ValueSeries is the simulated portfolio value per date
type ValueSeries struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of points
func (v ValueSeries) Len() int {
	return len(v.Values)
}

// Simulate tracks holdings of initial*weight per symbol through the cleaned
// price matrix. Holdings compound by each day's return; once interval rows
// have passed since the last reset they are set back to total*weight.
// Values[0] is always initial.
func Simulate(prices domain.PriceMatrix, symbols []string, weights []float64, initial float64, interval int) (ValueSeries, error) {
	if len(symbols) != len(weights) {
		return ValueSeries{}, fmt.Errorf("symbols count %d doesn't match weights count %d", len(symbols), len(weights))
	}
	n := prices.Len()
	if n == 0 {
		return ValueSeries{}, fmt.Errorf("empty price matrix")
	}
	cols := make([][]float64, len(symbols))
	for j, s := range symbols {
		col, ok := prices.Columns[s]
		if !ok || len(col) != n {
			return ValueSeries{}, fmt.Errorf("missing price column for %s", s)
		}
		cols[j] = col
	}

	out := ValueSeries{
		Dates:  append([]time.Time(nil), prices.Dates...),
		Values: make([]float64, n),
	}
	out.Values[0] = initial

	holdings := make([]float64, len(symbols))
	for j, w := range weights {
		holdings[j] = initial * w
	}

	sinceRebalance := 0
	for i := 1; i < n; i++ {
		total := 0.0
		for j, col := range cols {
			r := 0.0
			if col[i-1] != 0 {
				r = col[i]/col[i-1] - 1
			}
			holdings[j] *= 1 + r
			total += holdings[j]
		}
		out.Values[i] = total

		sinceRebalance++
		if interval > 0 && sinceRebalance >= interval {
			for j, w := range weights {
				holdings[j] = total * w
			}
			sinceRebalance = 0
		}
	}

	return out, nil
}

// Package optimization computes asset allocations under a chosen strategy.
package optimization

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/returns"
)

// Weights maps symbol to portfolio weight
type Weights map[string]float64

// Sum returns the total weight
func (w Weights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Prune drops weights at or below threshold and renormalizes the rest to sum to 1.
func (w Weights) Prune(threshold float64) Weights {
	out := make(Weights, len(w))
	for s, v := range w {
		if v > threshold {
			out[s] = v
		}
	}
	total := out.Sum()
	if total > 0 {
		for s := range out {
			out[s] /= total
		}
	}
	return out
}

// SymbolWeight is one entry of a sorted weight list
type SymbolWeight struct {
	Symbol string
	Weight float64
}

// Sorted returns the weights by descending weight, ties broken by symbol
func (w Weights) Sorted() []SymbolWeight {
	out := make([]SymbolWeight, 0, len(w))
	for s, v := range w {
		out = append(out, SymbolWeight{Symbol: s, Weight: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// StrategyFailure explains why a strategy could not produce weights.
// It is an expected numerical outcome, not an error; the caller decides
// whether to fall back.
type StrategyFailure struct {
	Strategy domain.Strategy
	Reason   string
}

func (f StrategyFailure) String() string {
	return fmt.Sprintf("%s: %s", f.Strategy, f.Reason)
}

func failure(s domain.Strategy, format string, args ...interface{}) *StrategyFailure {
	return &StrategyFailure{Strategy: s, Reason: fmt.Sprintf(format, args...)}
}

// Inputs is the data every strategy receives
type Inputs struct {
	Returns        returns.Matrix
	MaxWeight      float64
	RiskFreeRate   float64
	RiskParityIter int
}

// StrategyFunc computes weights for the symbols of in.Returns.
// A non-nil failure means the method could not solve this universe; a non-nil
// error means the inputs were malformed.
type StrategyFunc func(in Inputs) (Weights, *StrategyFailure, error)

type strategyEntry struct {
	label string
	run   StrategyFunc
}

var strategyTable = map[domain.Strategy]strategyEntry{
	domain.StrategyMinVolatility: {label: "安定重視ポートフォリオ", run: minVolatilityStrategy},
	domain.StrategyHRP:           {label: "バランス型ポートフォリオ", run: hrpStrategy},
	domain.StrategyMaxSharpe:     {label: "積極型ポートフォリオ", run: maxSharpeStrategy},
	domain.StrategyRiskParity:    {label: "リスクパリティポートフォリオ", run: riskParityStrategy},
	domain.StrategyEqualWeight:   {label: "均等配分ポートフォリオ", run: equalWeightStrategy},
}

// ResolveStrategy turns a requested strategy into a concrete one. "auto" and
// empty pick the tolerance's recommendation; unknown names use HRP.
func ResolveStrategy(requested domain.Strategy, tolerance domain.RiskTolerance) domain.Strategy {
	if requested == "" || requested == domain.StrategyAuto {
		return tolerance.RecommendedStrategy()
	}
	if _, ok := strategyTable[requested]; !ok {
		return domain.StrategyHRP
	}
	return requested
}

// StrategyLabel returns the display name of a strategy
func StrategyLabel(s domain.Strategy) string {
	if e, ok := strategyTable[s]; ok {
		return e.label
	}
	return string(s)
}

// RunStrategy executes one strategy without fallback
func RunStrategy(s domain.Strategy, in Inputs) (Weights, *StrategyFailure, error) {
	e, ok := strategyTable[s]
	if !ok {
		return nil, nil, fmt.Errorf("unknown strategy: %s", s)
	}
	if len(in.Returns.Symbols) == 0 {
		return nil, nil, fmt.Errorf("no symbols provided")
	}
	w, f, err := e.run(in)
	if err != nil || f != nil {
		return nil, f, err
	}
	if bad := invalidWeights(w); bad != "" {
		return nil, failure(s, "%s", bad), nil
	}
	return w, nil, nil
}

func invalidWeights(w Weights) string {
	for s, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Sprintf("non-finite weight for %s", s)
		}
		if v < -1e-9 {
			return fmt.Sprintf("negative weight for %s", s)
		}
	}
	if total := w.Sum(); total <= 0 {
		return "weights sum to zero"
	}
	return ""
}

func equalWeightStrategy(in Inputs) (Weights, *StrategyFailure, error) {
	return EqualWeight(in.Returns.Symbols), nil, nil
}

// EqualWeight assigns 1/N to every symbol
func EqualWeight(symbols []string) Weights {
	w := make(Weights, len(symbols))
	if len(symbols) == 0 {
		return w
	}
	v := 1.0 / float64(len(symbols))
	for _, s := range symbols {
		w[s] = v
	}
	return w
}

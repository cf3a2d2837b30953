package domain

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPricePoint_EffectiveClose(t *testing.T) {
	adj := 98.5
	zero := 0.0

	assert.Equal(t, 98.5, PricePoint{Close: 100, AdjClose: &adj}.EffectiveClose())
	assert.Equal(t, 100.0, PricePoint{Close: 100}.EffectiveClose())
	assert.Equal(t, 100.0, PricePoint{Close: 100, AdjClose: &zero}.EffectiveClose())
}

func TestPriceMatrix_CountAndSelect(t *testing.T) {
	nan := math.NaN()
	m := PriceMatrix{
		Dates:   []time.Time{time.Now(), time.Now(), time.Now()},
		Symbols: []string{"VTI", "BND"},
		Columns: map[string][]float64{
			"VTI": {1, 2, 3},
			"BND": {nan, 2, nan},
		},
	}

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 3, m.Count("VTI"))
	assert.Equal(t, 1, m.Count("BND"))
	assert.Equal(t, 0, m.Count("SPY"))

	sel := m.Select([]string{"BND", "SPY"})
	assert.Equal(t, []string{"BND"}, sel.Symbols)
	assert.True(t, sel.Has("BND"))
	assert.False(t, sel.Has("VTI"))
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, AssetTypeREIT.Valid())
	assert.False(t, AssetType("crypto").Valid())
	assert.True(t, MarketJP.Valid())
	assert.False(t, Market("eu").Valid())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("need %d assets", 2)
	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidationError(ErrNotFound))
	assert.Equal(t, "need 2 assets", err.Error())
}

func TestRiskTolerance_RecommendedStrategy(t *testing.T) {
	assert.Equal(t, StrategyMinVolatility, RiskToleranceConservative.RecommendedStrategy())
	assert.Equal(t, StrategyHRP, RiskToleranceModerate.RecommendedStrategy())
	assert.Equal(t, StrategyMaxSharpe, RiskToleranceAggressive.RecommendedStrategy())
	assert.Equal(t, StrategyHRP, RiskTolerance("reckless").RecommendedStrategy())
	assert.False(t, RiskTolerance("reckless").Valid())
	assert.True(t, StrategyAuto.Valid())
	assert.False(t, Strategy("momentum").Valid())
}

// Package domain provides core domain models and types.
package domain

import (
	"math"
	"time"
)

// Currency represents a currency code
type Currency string

const (
	CurrencyJPY Currency = "JPY"
	CurrencyUSD Currency = "USD"
)

// AssetType classifies an investable asset
type AssetType string

const (
	AssetTypeStock AssetType = "stock"
	AssetTypeETF   AssetType = "etf"
	AssetTypeBond  AssetType = "bond"
	AssetTypeREIT  AssetType = "reit"
)

// Valid reports whether t is a known asset type
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeStock, AssetTypeETF, AssetTypeBond, AssetTypeREIT:
		return true
	}
	return false
}

// Market identifies the listing market of an asset
type Market string

const (
	MarketJP Market = "jp"
	MarketUS Market = "us"
)

// Valid reports whether m is a known market
func (m Market) Valid() bool {
	return m == MarketJP || m == MarketUS
}

// Asset is an investable instrument in the universe.
// Symbol is the immutable identity; assets are deactivated, never deleted.
type Asset struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	NameJA      string    `json:"name_ja,omitempty"`
	AssetType   AssetType `json:"asset_type"`
	Market      Market    `json:"market"`
	Currency    Currency  `json:"currency"`
	Sector      string    `json:"sector,omitempty"`
	Description string    `json:"description,omitempty"`
	ID          int64     `json:"id"`
	IsActive    bool      `json:"is_active"`
}

// PricePoint is one trading day of an asset's price series
type PricePoint struct {
	Date     time.Time `json:"date"`
	Open     *float64  `json:"open"`
	High     *float64  `json:"high"`
	Low      *float64  `json:"low"`
	AdjClose *float64  `json:"adj_close"`
	Volume   *int64    `json:"volume"`
	Close    float64   `json:"close"`
}

// EffectiveClose returns the adjusted close when present, otherwise the close
func (p PricePoint) EffectiveClose() float64 {
	if p.AdjClose != nil && *p.AdjClose != 0 {
		return *p.AdjClose
	}
	return p.Close
}

// IndicatorType names an economic indicator series
type IndicatorType string

const (
	IndicatorUSTreasury10Y IndicatorType = "us_treasury_10y"
	IndicatorJPGovtBond10Y IndicatorType = "jp_govt_bond_10y"
	IndicatorUSDJPY        IndicatorType = "usd_jpy"
	IndicatorEURJPY        IndicatorType = "eur_jpy"
)

// AllIndicatorTypes lists the indicator series in display order
var AllIndicatorTypes = []IndicatorType{
	IndicatorUSTreasury10Y,
	IndicatorJPGovtBond10Y,
	IndicatorUSDJPY,
	IndicatorEURJPY,
}

// Indicator is a dated observation of an economic indicator
type Indicator struct {
	Date     time.Time     `json:"date"`
	Type     IndicatorType `json:"indicator_type"`
	Name     string        `json:"indicator_name"`
	Currency string        `json:"currency,omitempty"`
	Source   string        `json:"source,omitempty"`
	Value    float64       `json:"value"`
}

// PriceMatrix is a date-aligned table of adjusted closes.
// Dates are ascending; Columns[symbol][i] is the price on Dates[i] or NaN when
// the symbol did not trade that day.
type PriceMatrix struct {
	Columns map[string][]float64
	Dates   []time.Time
	Symbols []string
}

// Len returns the number of rows
func (m PriceMatrix) Len() int {
	return len(m.Dates)
}

// Has reports whether the matrix carries a column for symbol
func (m PriceMatrix) Has(symbol string) bool {
	_, ok := m.Columns[symbol]
	return ok
}

// Count returns the number of non-missing observations for symbol
func (m PriceMatrix) Count(symbol string) int {
	n := 0
	for _, v := range m.Columns[symbol] {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Select returns a matrix restricted to the given symbols, in that order.
// Symbols without a column are skipped.
func (m PriceMatrix) Select(symbols []string) PriceMatrix {
	out := PriceMatrix{
		Dates:   m.Dates,
		Columns: make(map[string][]float64, len(symbols)),
	}
	for _, s := range symbols {
		col, ok := m.Columns[s]
		if !ok {
			continue
		}
		out.Symbols = append(out.Symbols, s)
		out.Columns[s] = col
	}
	return out
}

// RiskTolerance is the three-tier risk category derived from a risk score
type RiskTolerance string

const (
	RiskToleranceConservative RiskTolerance = "conservative"
	RiskToleranceModerate     RiskTolerance = "moderate"
	RiskToleranceAggressive   RiskTolerance = "aggressive"
)

// Valid reports whether t is a known tolerance
func (t RiskTolerance) Valid() bool {
	switch t {
	case RiskToleranceConservative, RiskToleranceModerate, RiskToleranceAggressive:
		return true
	}
	return false
}

// RecommendedStrategy maps a tolerance to its default allocation strategy.
// Unknown tolerances get hierarchical risk parity.
func (t RiskTolerance) RecommendedStrategy() Strategy {
	switch t {
	case RiskToleranceConservative:
		return StrategyMinVolatility
	case RiskToleranceAggressive:
		return StrategyMaxSharpe
	default:
		return StrategyHRP
	}
}

// Strategy names an allocation method
type Strategy string

const (
	StrategyAuto          Strategy = "auto"
	StrategyMinVolatility Strategy = "min_volatility"
	StrategyHRP           Strategy = "hrp"
	StrategyMaxSharpe     Strategy = "max_sharpe"
	StrategyRiskParity    Strategy = "risk_parity"
	StrategyEqualWeight   Strategy = "equal_weight"
)

// Valid reports whether s is "auto" or a concrete strategy
func (s Strategy) Valid() bool {
	switch s {
	case StrategyAuto, StrategyMinVolatility, StrategyHRP, StrategyMaxSharpe, StrategyRiskParity, StrategyEqualWeight:
		return true
	}
	return false
}

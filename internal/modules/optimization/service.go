package optimization

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/returns"
	"github.com/aristath/portfolio-advisor/pkg/formulas"
	"github.com/rs/zerolog"
)

// Settings holds the tunable thresholds of the optimizer
type Settings struct {
	MinDataPoints        int
	PruneThreshold       float64
	MaxSingleAssetWeight float64
	RiskParityIterations int
}

// DefaultSettings returns the stock thresholds
func DefaultSettings() Settings {
	return Settings{
		MinDataPoints:        returns.DefaultMinObservations,
		PruneThreshold:       0.001,
		MaxSingleAssetWeight: 0.30,
		RiskParityIterations: DefaultRiskParityIterations,
	}
}

// Constraints narrow the universe and cap single-asset weight
type Constraints struct {
	MaxSingleAssetWeight float64            `json:"max_single_asset_weight"`
	IncludeMarkets       []domain.Market    `json:"include_markets"`
	IncludeAssetTypes    []domain.AssetType `json:"include_asset_types"`
}

// DefaultConstraints returns the constraint set applied when a request
// provides a constraints object with omitted fields.
func DefaultConstraints() Constraints {
	return Constraints{
		MaxSingleAssetWeight: 0.30,
		IncludeMarkets:       []domain.Market{domain.MarketJP, domain.MarketUS},
		IncludeAssetTypes:    []domain.AssetType{domain.AssetTypeETF, domain.AssetTypeBond, domain.AssetTypeREIT},
	}
}

// Request describes one optimization
type Request struct {
	InvestmentAmount  *int64
	Constraints       *Constraints
	RiskTolerance     domain.RiskTolerance
	InvestmentHorizon string
	Strategy          domain.Strategy
	Currency          string
	RiskScore         int
}

// AssetSummary is the asset description attached to an allocation
type AssetSummary struct {
	Symbol    string           `json:"symbol"`
	NameJA    *string          `json:"name_ja"`
	AssetType domain.AssetType `json:"asset_type"`
	Market    domain.Market    `json:"market"`
}

// Allocation is one weighted asset of a portfolio
type Allocation struct {
	Amount *int64       `json:"amount"`
	Asset  AssetSummary `json:"asset"`
	Weight float64      `json:"weight"`
}

// RiskProfileSummary echoes the profile the portfolio was built for
type RiskProfileSummary struct {
	RiskTolerance domain.RiskTolerance `json:"risk_tolerance"`
	RiskScore     int                  `json:"risk_score"`
}

// Portfolio is the outcome of an optimization
type Portfolio struct {
	Name        string             `json:"name"`
	Strategy    domain.Strategy    `json:"strategy"`
	Currency    string             `json:"currency"`
	RiskProfile RiskProfileSummary `json:"risk_profile"`
	Metrics     Metrics            `json:"metrics"`
	Allocations []Allocation       `json:"allocations"`
}

// RiskFreeRateProvider supplies the annual risk-free rate
type RiskFreeRateProvider interface {
	Rate(ctx context.Context) (float64, error)
}

// Service builds portfolios from the stored universe
type Service struct {
	catalog  domain.AssetCatalog
	prices   domain.PriceMatrixProvider
	riskFree RiskFreeRateProvider
	log      zerolog.Logger
	settings Settings
}

// NewService creates an optimization service
func NewService(
	catalog domain.AssetCatalog,
	prices domain.PriceMatrixProvider,
	riskFree RiskFreeRateProvider,
	settings Settings,
	log zerolog.Logger,
) *Service {
	return &Service{
		catalog:  catalog,
		prices:   prices,
		riskFree: riskFree,
		settings: settings,
		log:      log.With().Str("component", "optimizer").Logger(),
	}
}

// Optimize selects the universe, estimates returns and runs the strategy,
// falling back to equal weight when the strategy cannot solve the universe.
// Data shortfalls are reported as domain.ValidationError.
func (s *Service) Optimize(ctx context.Context, req Request) (*Portfolio, error) {
	strategy := ResolveStrategy(req.Strategy, req.RiskTolerance)

	filter := domain.AssetFilter{}
	maxWeight := s.settings.MaxSingleAssetWeight
	if req.Constraints != nil {
		filter.Markets = req.Constraints.IncludeMarkets
		filter.AssetTypes = req.Constraints.IncludeAssetTypes
		if req.Constraints.MaxSingleAssetWeight > 0 {
			maxWeight = req.Constraints.MaxSingleAssetWeight
		}
	}

	assets, err := s.catalog.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to select assets: %w", err)
	}
	if len(assets) < 2 {
		return nil, domain.NewValidationError("対象資産が不足しています。少なくとも2銘柄以上の価格データが必要です。")
	}

	symbols := make([]string, len(assets))
	bySymbol := make(map[string]domain.Asset, len(assets))
	for i, a := range assets {
		symbols[i] = a.Symbol
		bySymbol[a.Symbol] = a
	}

	prices, err := s.prices.PriceMatrix(ctx, symbols, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load price matrix: %w", err)
	}
	if prices.Len() == 0 || len(prices.Symbols) < 2 {
		return nil, domain.NewValidationError("価格データが不足しています。市場データの更新が必要です。")
	}

	prices = returns.FilterMinObservations(prices, s.settings.MinDataPoints)
	if len(prices.Symbols) < 2 {
		return nil, domain.NewValidationError("十分な価格データがある銘柄が不足しています。")
	}
	prices = returns.Clean(prices)
	daily := returns.DailyReturns(prices)
	if daily.Rows() < 2 {
		return nil, domain.NewValidationError("十分な価格データがある銘柄が不足しています。")
	}

	rf, err := s.riskFree.Rate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get risk-free rate: %w", err)
	}

	in := Inputs{
		Returns:        daily,
		MaxWeight:      maxWeight,
		RiskFreeRate:   rf,
		RiskParityIter: s.settings.RiskParityIterations,
	}

	weights, fail, err := RunStrategy(strategy, in)
	if err != nil {
		return nil, fmt.Errorf("strategy %s failed: %w", strategy, err)
	}
	if fail != nil {
		s.log.Warn().
			Str("strategy", string(strategy)).
			Str("reason", fail.Reason).
			Str("fallback", string(domain.StrategyEqualWeight)).
			Msg("Optimization failed, falling back to equal weight")
		strategy = domain.StrategyEqualWeight
		weights = EqualWeight(daily.Symbols)
	}

	weights = weights.Prune(s.settings.PruneThreshold)
	metrics := CalculateMetrics(weights, daily, rf)

	allocations := make([]Allocation, 0, len(weights))
	for _, sw := range weights.Sorted() {
		asset, ok := bySymbol[sw.Symbol]
		if !ok {
			continue
		}
		alloc := Allocation{
			Asset:  summarize(asset),
			Weight: formulas.Round(sw.Weight, 4),
		}
		if req.InvestmentAmount != nil && *req.InvestmentAmount != 0 {
			amount := int64(math.RoundToEven(float64(*req.InvestmentAmount) * sw.Weight))
			alloc.Amount = &amount
		}
		allocations = append(allocations, alloc)
	}

	s.log.Info().
		Str("strategy", string(strategy)).
		Int("assets", len(allocations)).
		Msg("Portfolio optimized")

	currency := req.Currency
	if currency == "" {
		currency = string(domain.CurrencyJPY)
	}

	return &Portfolio{
		Name:     StrategyLabel(strategy),
		Strategy: strategy,
		RiskProfile: RiskProfileSummary{
			RiskScore:     req.RiskScore,
			RiskTolerance: req.RiskTolerance,
		},
		Metrics:     metrics,
		Allocations: allocations,
		Currency:    currency,
	}, nil
}

func summarize(a domain.Asset) AssetSummary {
	out := AssetSummary{Symbol: a.Symbol, AssetType: a.AssetType, Market: a.Market}
	if a.NameJA != "" {
		name := a.NameJA
		out.NameJA = &name
	}
	return out
}

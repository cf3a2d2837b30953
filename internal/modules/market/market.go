// Package market assembles the market overview from stored indicators and
// benchmark prices.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/universe"
	"github.com/rs/zerolog"
)

// Disclaimer accompanies the market summary.
const Disclaimer = "※ データは情報提供目的であり、リアルタイムではありません。"

// IndicatorSource lists the latest indicator observations
type IndicatorSource interface {
	LatestAll(ctx context.Context) ([]domain.Indicator, error)
}

// QuoteSource returns the latest close of an asset and its change
type QuoteSource interface {
	GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error)
	LatestPrice(ctx context.Context, assetID int64) (*universe.LatestPrice, error)
}

// Index is a tracked index proxied by an ETF
type Index struct {
	Name   string
	Symbol string
}

// DefaultIndices are the indices shown on the summary.
var DefaultIndices = []Index{
	{Name: "日経225", Symbol: "1321.T"},
	{Name: "S&P 500", Symbol: "SPY"},
}

var bondNames = map[domain.IndicatorType]string{
	domain.IndicatorUSTreasury10Y: "米国10年国債利回り",
	domain.IndicatorJPGovtBond10Y: "日本10年国債利回り",
}

var forexPairs = map[domain.IndicatorType]string{
	domain.IndicatorUSDJPY: "USD/JPY",
	domain.IndicatorEURJPY: "EUR/JPY",
}

// IndexData is the latest level of an index proxy
type IndexData struct {
	Value     *float64 `json:"value"`
	ChangePct *float64 `json:"change_pct"`
	AsOf      *string  `json:"as_of"`
	Name      string   `json:"name"`
	Symbol    string   `json:"symbol"`
}

// BondData is the latest yield of a government bond
type BondData struct {
	Value         *float64 `json:"value"`
	AsOf          *string  `json:"as_of"`
	Name          string   `json:"name"`
	IndicatorType string   `json:"indicator_type"`
}

// ForexData is the latest rate of a currency pair
type ForexData struct {
	Rate      *float64 `json:"rate"`
	ChangePct *float64 `json:"change_pct"`
	AsOf      *string  `json:"as_of"`
	Pair      string   `json:"pair"`
}

// Summary is the market overview
type Summary struct {
	UpdatedAt  time.Time   `json:"updated_at"`
	Disclaimer string      `json:"disclaimer"`
	Indices    []IndexData `json:"indices"`
	Bonds      []BondData  `json:"bonds"`
	Forex      []ForexData `json:"forex"`
}

// Service builds market summaries
type Service struct {
	indicators IndicatorSource
	quotes     QuoteSource
	indices    []Index
	now        func() time.Time
	log        zerolog.Logger
}

// NewService creates a market service. quotes may be nil, in which case no
// indices are reported.
func NewService(indicators IndicatorSource, quotes QuoteSource, log zerolog.Logger) *Service {
	return &Service{
		indicators: indicators,
		quotes:     quotes,
		indices:    DefaultIndices,
		now:        time.Now,
		log:        log.With().Str("component", "market").Logger(),
	}
}

// Indicators returns the latest observation of each indicator type
func (s *Service) Indicators(ctx context.Context) ([]domain.Indicator, error) {
	out, err := s.indicators.LatestAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load indicators: %w", err)
	}
	return out, nil
}

// Summary returns bonds and forex from indicators and indices from the latest
// benchmark closes. Missing data is omitted.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	inds, err := s.Indicators(ctx)
	if err != nil {
		return nil, err
	}

	out := &Summary{
		UpdatedAt:  s.now().UTC(),
		Disclaimer: Disclaimer,
		Indices:    []IndexData{},
		Bonds:      []BondData{},
		Forex:      []ForexData{},
	}

	for _, ind := range inds {
		value := ind.Value
		asOf := ind.Date.Format("2006-01-02")
		if name, ok := bondNames[ind.Type]; ok {
			out.Bonds = append(out.Bonds, BondData{
				Name:          name,
				IndicatorType: string(ind.Type),
				Value:         &value,
				AsOf:          &asOf,
			})
		}
		if pair, ok := forexPairs[ind.Type]; ok {
			out.Forex = append(out.Forex, ForexData{Pair: pair, Rate: &value, AsOf: &asOf})
		}
	}

	if s.quotes != nil {
		for _, idx := range s.indices {
			data, err := s.indexData(ctx, idx)
			if err != nil {
				s.log.Warn().Str("symbol", idx.Symbol).Err(err).Msg("Failed to load index quote")
				continue
			}
			if data != nil {
				out.Indices = append(out.Indices, *data)
			}
		}
	}

	return out, nil
}

func (s *Service) indexData(ctx context.Context, idx Index) (*IndexData, error) {
	asset, err := s.quotes.GetBySymbol(ctx, idx.Symbol)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	latest, err := s.quotes.LatestPrice(ctx, asset.ID)
	if err != nil || latest == nil {
		return nil, err
	}
	value := latest.Close
	asOf := latest.Date.Format("2006-01-02")
	return &IndexData{
		Name:      idx.Name,
		Symbol:    idx.Symbol,
		Value:     &value,
		ChangePct: latest.ChangePct,
		AsOf:      &asOf,
	}, nil
}

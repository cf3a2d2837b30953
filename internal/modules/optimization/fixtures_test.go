package optimization

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/returns"
)

type fakeCatalog struct {
	assets []domain.Asset
	err    error
}

func (f *fakeCatalog) Query(ctx context.Context, filter domain.AssetFilter) ([]domain.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Asset
	for _, a := range f.assets {
		if len(filter.Markets) > 0 && !containsMarket(filter.Markets, a.Market) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeCatalog) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	for _, a := range f.assets {
		if a.Symbol == symbol {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func containsMarket(ms []domain.Market, m domain.Market) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

type fakePrices struct {
	matrix domain.PriceMatrix
}

func (f *fakePrices) PriceMatrix(ctx context.Context, symbols []string, start, end time.Time) (domain.PriceMatrix, error) {
	return f.matrix.Select(symbols), nil
}

type fixedRate float64

func (r fixedRate) Rate(ctx context.Context) (float64, error) {
	return float64(r), nil
}

// randomWalk builds a price matrix of factor-driven random walks. lengths
// gives the number of trailing observations per symbol; earlier rows are NaN.
func randomWalk(seed int64, days int, symbols []string, lengths map[string]int) domain.PriceMatrix {
	rnd := rand.New(rand.NewSource(seed))
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	m := domain.PriceMatrix{
		Symbols: symbols,
		Columns: make(map[string][]float64, len(symbols)),
	}
	for i := 0; i < days; i++ {
		m.Dates = append(m.Dates, start.AddDate(0, 0, i))
	}

	betas := make([]float64, len(symbols))
	noise := make([]float64, len(symbols))
	drift := make([]float64, len(symbols))
	for j := range symbols {
		betas[j] = 0.5 + rnd.Float64()
		noise[j] = 0.004 + 0.012*rnd.Float64()
		drift[j] = 0.0002 + 0.0006*rnd.Float64()
	}

	prices := make([]float64, len(symbols))
	for j := range prices {
		prices[j] = 100
	}
	for i := 0; i < days; i++ {
		market := rnd.NormFloat64() * 0.008
		for j, s := range symbols {
			if i > 0 {
				r := drift[j] + betas[j]*market + noise[j]*rnd.NormFloat64()
				prices[j] *= 1 + r
			}
			v := prices[j]
			if n, ok := lengths[s]; ok && i < days-n {
				v = math.NaN()
			}
			m.Columns[s] = append(m.Columns[s], v)
		}
	}
	return m
}

func dailyReturnsFor(seed int64, days int, symbols []string) returns.Matrix {
	return returns.DailyReturns(returns.Clean(randomWalk(seed, days, symbols, nil)))
}

func testAssets(symbols ...string) []domain.Asset {
	out := make([]domain.Asset, len(symbols))
	for i, s := range symbols {
		out[i] = domain.Asset{
			ID:        int64(i + 1),
			Symbol:    s,
			Name:      s,
			NameJA:    s + " ファンド",
			AssetType: domain.AssetTypeETF,
			Market:    domain.MarketUS,
			Currency:  domain.CurrencyUSD,
			IsActive:  true,
		}
	}
	return out
}

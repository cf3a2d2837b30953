// Package universe stores the investable assets, their price history and the
// economic indicators, in SQLite or Postgres.
package universe

import (
	"context"
	"math"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
)

const dateLayout = "2006-01-02"

// Pagination bounds for List
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ListFilter narrows and paginates the asset listing. Zero values do not filter.
type ListFilter struct {
	Market    domain.Market
	AssetType domain.AssetType
	Search    string // case-insensitive substring of symbol, name or name_ja
	Page      int
	PerPage   int
}

// normalize clamps the pagination fields
func (f ListFilter) normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

// Offset returns the row offset of the page
func (f ListFilter) Offset() int {
	f = f.normalize()
	return (f.Page - 1) * f.PerPage
}

// Pages returns ceil(total / perPage), or 0 when there are no rows
func Pages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// LatestPrice is the most recent close with the change from the prior close
type LatestPrice struct {
	Date      time.Time `json:"date"`
	ChangePct *float64  `json:"change_pct"`
	Close     float64   `json:"close"`
}

// Interval selects the spacing of a returned price history
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

var periodDays = map[string]int{
	"1m":  30,
	"3m":  90,
	"6m":  180,
	"1y":  365,
	"3y":  365 * 3,
	"5y":  365 * 5,
	"max": 365 * 30,
}

// PeriodDays returns the look-back of a named period; unknown periods are one year
func PeriodDays(period string) int {
	if d, ok := periodDays[period]; ok {
		return d
	}
	return 365
}

// PeriodStart returns the first date included in period relative to now
func PeriodStart(period string, now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -PeriodDays(period))
}

// Downsample keeps every 5th point for weekly and every 22nd for monthly
// intervals, starting with the first.
func Downsample(points []domain.PricePoint, interval Interval) []domain.PricePoint {
	step := 1
	switch interval {
	case IntervalWeekly:
		step = 5
	case IntervalMonthly:
		step = 22
	}
	if step == 1 {
		return points
	}
	out := make([]domain.PricePoint, 0, len(points)/step+1)
	for i := 0; i < len(points); i += step {
		out = append(out, points[i])
	}
	return out
}

// Store is the full persistence surface shared by the SQLite and Postgres stores
type Store interface {
	domain.AssetCatalog
	domain.PriceMatrixProvider
	domain.IndicatorProvider

	List(ctx context.Context, filter ListFilter) ([]domain.Asset, int, error)
	UpsertAssets(ctx context.Context, assets []domain.Asset) (int, error)

	LatestPrice(ctx context.Context, assetID int64) (*LatestPrice, error)
	Prices(ctx context.Context, assetID int64, since time.Time) ([]domain.PricePoint, error)
	UpsertPrices(ctx context.Context, assetID int64, points []domain.PricePoint) (int, error)

	LatestAll(ctx context.Context) ([]domain.Indicator, error)
	UpsertIndicator(ctx context.Context, ind domain.Indicator) error
}

// closeRow is one stored effective close, used to assemble price matrices
type closeRow struct {
	Date   time.Time
	Symbol string
	Value  float64
}

// buildMatrix aligns rows (ascending by date) on the union of their dates.
// Symbols keep the requested order and only those with rows get a column.
func buildMatrix(symbols []string, rows []closeRow) domain.PriceMatrix {
	out := domain.PriceMatrix{Columns: make(map[string][]float64)}

	index := make(map[time.Time]int)
	for _, r := range rows {
		if _, ok := index[r.Date]; !ok {
			index[r.Date] = len(out.Dates)
			out.Dates = append(out.Dates, r.Date)
		}
	}

	seen := make(map[string]bool, len(symbols))
	for _, r := range rows {
		seen[r.Symbol] = true
	}
	for _, s := range symbols {
		if !seen[s] || out.Has(s) {
			continue
		}
		col := make([]float64, len(out.Dates))
		for i := range col {
			col[i] = math.NaN()
		}
		out.Columns[s] = col
		out.Symbols = append(out.Symbols, s)
	}

	for _, r := range rows {
		if col, ok := out.Columns[r.Symbol]; ok {
			col[index[r.Date]] = r.Value
		}
	}
	return out
}

func changePct(latest, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	v := (latest - previous) / previous
	return &v
}

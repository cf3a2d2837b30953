package universe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/portfolio-advisor/internal/database"
	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
)

// PriceRepository reads and writes daily asset prices on SQLite
type PriceRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *sql.DB, log zerolog.Logger) *PriceRepository {
	return &PriceRepository{
		db:  db,
		log: log.With().Str("repo", "price").Logger(),
	}
}

// PriceMatrix builds a date-aligned table of effective closes (adj_close when
// present, else close) for the requested symbols.
func (r *PriceRepository) PriceMatrix(ctx context.Context, symbols []string, start, end time.Time) (domain.PriceMatrix, error) {
	if len(symbols) == 0 {
		return buildMatrix(nil, nil), nil
	}

	where := []string{"a.symbol IN (" + placeholders(len(symbols)) + ")"}
	args := make([]interface{}, 0, len(symbols)+2)
	for _, s := range symbols {
		args = append(args, s)
	}
	if !start.IsZero() {
		where = append(where, "p.date >= ?")
		args = append(args, start.Format(dateLayout))
	}
	if !end.IsZero() {
		where = append(where, "p.date <= ?")
		args = append(args, end.Format(dateLayout))
	}

	query := `
		SELECT a.symbol, p.date, p.close, p.adj_close
		FROM asset_prices p
		JOIN assets a ON a.id = p.asset_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY p.date, a.symbol
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PriceMatrix{}, fmt.Errorf("failed to query price matrix: %w", err)
	}
	defer rows.Close()

	var out []closeRow
	for rows.Next() {
		var symbol, date string
		var p domain.PricePoint
		var adj sql.NullFloat64
		if err := rows.Scan(&symbol, &date, &p.Close, &adj); err != nil {
			return domain.PriceMatrix{}, fmt.Errorf("failed to scan price row: %w", err)
		}
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return domain.PriceMatrix{}, fmt.Errorf("invalid stored date %q: %w", date, err)
		}
		if adj.Valid {
			p.AdjClose = &adj.Float64
		}
		out = append(out, closeRow{Symbol: symbol, Date: d, Value: p.EffectiveClose()})
	}
	if err := rows.Err(); err != nil {
		return domain.PriceMatrix{}, fmt.Errorf("error iterating price rows: %w", err)
	}

	return buildMatrix(symbols, out), nil
}

// Prices returns the asset's prices on or after since, ascending by date
func (r *PriceRepository) Prices(ctx context.Context, assetID int64, since time.Time) ([]domain.PricePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, adj_close, volume
		FROM asset_prices
		WHERE asset_id = ? AND date >= ?
		ORDER BY date
	`, assetID, since.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	points := []domain.PricePoint{}
	for rows.Next() {
		var date string
		var open, high, low, adj sql.NullFloat64
		var volume sql.NullInt64
		var p domain.PricePoint

		if err := rows.Scan(&date, &open, &high, &low, &p.Close, &adj, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		if p.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
		}
		p.Open = floatPtr(open)
		p.High = floatPtr(high)
		p.Low = floatPtr(low)
		p.AdjClose = floatPtr(adj)
		if volume.Valid {
			v := volume.Int64
			p.Volume = &v
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}
	return points, nil
}

// LatestPrice returns the most recent close and its change from the prior
// close, or nil when the asset has no prices.
func (r *PriceRepository) LatestPrice(ctx context.Context, assetID int64) (*LatestPrice, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT date, close FROM asset_prices WHERE asset_id = ? ORDER BY date DESC LIMIT 2", assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest price: %w", err)
	}
	defer rows.Close()

	var dates []string
	var closes []float64
	for rows.Next() {
		var d string
		var c float64
		if err := rows.Scan(&d, &c); err != nil {
			return nil, fmt.Errorf("failed to scan latest price: %w", err)
		}
		dates = append(dates, d)
		closes = append(closes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating latest prices: %w", err)
	}
	if len(dates) == 0 {
		return nil, nil
	}

	date, err := time.Parse(dateLayout, dates[0])
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", dates[0], err)
	}
	latest := &LatestPrice{Date: date, Close: closes[0]}
	if len(closes) > 1 {
		latest.ChangePct = changePct(closes[0], closes[1])
	}
	return latest, nil
}

// UpsertPrices writes points for an asset, replacing rows with the same date
func (r *PriceRepository) UpsertPrices(ctx context.Context, assetID int64, points []domain.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO asset_prices (asset_id, date, open, high, low, close, adj_close, volume)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(asset_id, date) DO UPDATE SET
				open = excluded.open,
				high = excluded.high,
				low = excluded.low,
				close = excluded.close,
				adj_close = excluded.adj_close,
				volume = excluded.volume
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare price upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if _, err := stmt.ExecContext(ctx, assetID, p.Date.Format(dateLayout),
				nullFloat(p.Open), nullFloat(p.High), nullFloat(p.Low), p.Close,
				nullFloat(p.AdjClose), nullInt(p.Volume)); err != nil {
				return fmt.Errorf("failed to upsert price %s: %w", p.Date.Format(dateLayout), err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Debug().Int64("asset_id", assetID).Int("count", len(points)).Msg("Upserted prices")
	return len(points), nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

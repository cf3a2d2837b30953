package universe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresStore implements Store on a pgx connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresStore creates a Store backed by pool
func NewPostgresStore(pool *pgxpool.Pool, log zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		log:  log.With().Str("repo", "postgres").Logger(),
	}
}

var _ Store = (*PostgresStore)(nil)

const pgAssetColumns = `id, symbol, name, COALESCE(name_ja, ''), asset_type, market, currency,
COALESCE(sector, ''), COALESCE(description, ''), is_active, created_at, updated_at`

func scanPgAsset(row pgx.Row) (domain.Asset, error) {
	var a domain.Asset
	var assetType, market, currency string
	err := row.Scan(&a.ID, &a.Symbol, &a.Name, &a.NameJA, &assetType, &market, &currency,
		&a.Sector, &a.Description, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	a.AssetType = domain.AssetType(assetType)
	a.Market = domain.Market(market)
	a.Currency = domain.Currency(currency)
	return a, err
}

func collectPgAssets(rows pgx.Rows) ([]domain.Asset, error) {
	defer rows.Close()
	assets := []domain.Asset{}
	for rows.Next() {
		a, err := scanPgAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}
	return assets, nil
}

// Query returns active assets matching the filter, ordered by symbol
func (s *PostgresStore) Query(ctx context.Context, filter domain.AssetFilter) ([]domain.Asset, error) {
	markets := make([]string, len(filter.Markets))
	for i, m := range filter.Markets {
		markets[i] = string(m)
	}
	types := make([]string, len(filter.AssetTypes))
	for i, t := range filter.AssetTypes {
		types[i] = string(t)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+pgAssetColumns+` FROM assets
		WHERE is_active
		  AND (cardinality($1::text[]) = 0 OR market = ANY($1))
		  AND (cardinality($2::text[]) = 0 OR asset_type = ANY($2))
		ORDER BY symbol
	`, markets, types)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	return collectPgAssets(rows)
}

// GetBySymbol returns the asset or domain.ErrNotFound
func (s *PostgresStore) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+pgAssetColumns+" FROM assets WHERE symbol = $1", strings.TrimSpace(symbol))
	a, err := scanPgAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %s: %w", symbol, err)
	}
	return &a, nil
}

// List returns one page of active assets and the total match count
func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]domain.Asset, int, error) {
	filter = filter.normalize()
	like := ""
	if q := strings.TrimSpace(filter.Search); q != "" {
		like = "%" + q + "%"
	}
	clause := `is_active
		AND ($1 = '' OR market = $1)
		AND ($2 = '' OR asset_type = $2)
		AND ($3 = '' OR symbol ILIKE $3 OR name ILIKE $3 OR COALESCE(name_ja, '') ILIKE $3)`
	args := []interface{}{string(filter.Market), string(filter.AssetType), like}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM assets WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT "+pgAssetColumns+" FROM assets WHERE "+clause+" ORDER BY symbol LIMIT $4 OFFSET $5",
		append(args, filter.PerPage, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assets: %w", err)
	}
	assets, err := collectPgAssets(rows)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// UpsertAssets inserts assets whose symbol is not yet stored
func (s *PostgresStore) UpsertAssets(ctx context.Context, assets []domain.Asset) (int, error) {
	batch := &pgx.Batch{}
	for _, a := range assets {
		batch.Queue(`
			INSERT INTO assets (symbol, name, name_ja, asset_type, market, currency, sector, description)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
			ON CONFLICT (symbol) DO NOTHING
		`, a.Symbol, a.Name, a.NameJA, string(a.AssetType), string(a.Market), string(a.Currency), a.Sector, a.Description)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for _, a := range assets {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert asset %s: %w", a.Symbol, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// PriceMatrix builds a date-aligned table of effective closes
func (s *PostgresStore) PriceMatrix(ctx context.Context, symbols []string, start, end time.Time) (domain.PriceMatrix, error) {
	if len(symbols) == 0 {
		return buildMatrix(nil, nil), nil
	}

	var startArg, endArg interface{}
	if !start.IsZero() {
		startArg = start
	}
	if !end.IsZero() {
		endArg = end
	}

	rows, err := s.pool.Query(ctx, `
		SELECT a.symbol, p.date, COALESCE(NULLIF(p.adj_close, 0), p.close)
		FROM asset_prices p
		JOIN assets a ON a.id = p.asset_id
		WHERE a.symbol = ANY($1)
		  AND ($2::date IS NULL OR p.date >= $2::date)
		  AND ($3::date IS NULL OR p.date <= $3::date)
		ORDER BY p.date, a.symbol
	`, symbols, startArg, endArg)
	if err != nil {
		return domain.PriceMatrix{}, fmt.Errorf("failed to query price matrix: %w", err)
	}
	defer rows.Close()

	var out []closeRow
	for rows.Next() {
		var r closeRow
		if err := rows.Scan(&r.Symbol, &r.Date, &r.Value); err != nil {
			return domain.PriceMatrix{}, fmt.Errorf("failed to scan price row: %w", err)
		}
		r.Date = r.Date.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return domain.PriceMatrix{}, fmt.Errorf("error iterating price rows: %w", err)
	}
	return buildMatrix(symbols, out), nil
}

// Prices returns the asset's prices on or after since, ascending by date
func (s *PostgresStore) Prices(ctx context.Context, assetID int64, since time.Time) ([]domain.PricePoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date, open, high, low, close, adj_close, volume
		FROM asset_prices
		WHERE asset_id = $1 AND date >= $2
		ORDER BY date
	`, assetID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	points := []domain.PricePoint{}
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.AdjClose, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		p.Date = p.Date.UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}
	return points, nil
}

// LatestPrice returns the most recent close and its change from the prior close
func (s *PostgresStore) LatestPrice(ctx context.Context, assetID int64) (*LatestPrice, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT date, close FROM asset_prices WHERE asset_id = $1 ORDER BY date DESC LIMIT 2", assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest price: %w", err)
	}
	defer rows.Close()

	var latest *LatestPrice
	for rows.Next() {
		var d time.Time
		var c float64
		if err := rows.Scan(&d, &c); err != nil {
			return nil, fmt.Errorf("failed to scan latest price: %w", err)
		}
		if latest == nil {
			latest = &LatestPrice{Date: d.UTC(), Close: c}
			continue
		}
		latest.ChangePct = changePct(latest.Close, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating latest prices: %w", err)
	}
	return latest, nil
}

// UpsertPrices writes points for an asset, replacing rows with the same date
func (s *PostgresStore) UpsertPrices(ctx context.Context, assetID int64, points []domain.PricePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range points {
			batch.Queue(`
				INSERT INTO asset_prices (asset_id, date, open, high, low, close, adj_close, volume)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (asset_id, date) DO UPDATE SET
					open = EXCLUDED.open,
					high = EXCLUDED.high,
					low = EXCLUDED.low,
					close = EXCLUDED.close,
					adj_close = EXCLUDED.adj_close,
					volume = EXCLUDED.volume
			`, assetID, p.Date, p.Open, p.High, p.Low, p.Close, p.AdjClose, p.Volume)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert prices: %w", err)
	}
	return len(points), nil
}

// Latest returns the most recent observation of the indicator, or nil
func (s *PostgresStore) Latest(ctx context.Context, indicatorType domain.IndicatorType) (*domain.Indicator, error) {
	var ind domain.Indicator
	var typ string
	err := s.pool.QueryRow(ctx, `
		SELECT indicator_type, indicator_name, value, COALESCE(currency, ''), date, source
		FROM economic_indicators
		WHERE indicator_type = $1
		ORDER BY date DESC
		LIMIT 1
	`, string(indicatorType)).Scan(&typ, &ind.Name, &ind.Value, &ind.Currency, &ind.Date, &ind.Source)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query indicator %s: %w", indicatorType, err)
	}
	ind.Type = domain.IndicatorType(typ)
	ind.Date = ind.Date.UTC()
	return &ind, nil
}

// LatestAll returns the latest observation of every indicator type that has one
func (s *PostgresStore) LatestAll(ctx context.Context) ([]domain.Indicator, error) {
	out := []domain.Indicator{}
	for _, t := range domain.AllIndicatorTypes {
		ind, err := s.Latest(ctx, t)
		if err != nil {
			return nil, err
		}
		if ind != nil {
			out = append(out, *ind)
		}
	}
	return out, nil
}

// UpsertIndicator writes one observation, replacing the same type and date
func (s *PostgresStore) UpsertIndicator(ctx context.Context, ind domain.Indicator) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO economic_indicators (indicator_type, indicator_name, value, currency, date, source)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		ON CONFLICT (indicator_type, date) DO UPDATE SET
			indicator_name = EXCLUDED.indicator_name,
			value = EXCLUDED.value,
			currency = EXCLUDED.currency,
			source = EXCLUDED.source
	`, string(ind.Type), ind.Name, ind.Value, ind.Currency, ind.Date, ind.Source)
	if err != nil {
		return fmt.Errorf("failed to upsert indicator %s: %w", ind.Type, err)
	}
	return nil
}

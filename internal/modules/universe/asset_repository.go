package universe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/portfolio-advisor/internal/database"
	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
)

// assetColumns is the column list of the assets table.
// Used to avoid SELECT * which can break when schema changes.
const assetColumns = `id, symbol, name, name_ja, asset_type, market, currency,
sector, description, is_active, created_at, updated_at`

// AssetRepository handles asset database operations on SQLite
type AssetRepository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *sql.DB, log zerolog.Logger) *AssetRepository {
	return &AssetRepository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repo", "asset").Logger(),
	}
}

// Query returns active assets matching the filter, ordered by symbol
func (r *AssetRepository) Query(ctx context.Context, filter domain.AssetFilter) ([]domain.Asset, error) {
	where := []string{"is_active = 1"}
	var args []interface{}

	if len(filter.Markets) > 0 {
		where = append(where, "market IN ("+placeholders(len(filter.Markets))+")")
		for _, m := range filter.Markets {
			args = append(args, string(m))
		}
	}
	if len(filter.AssetTypes) > 0 {
		where = append(where, "asset_type IN ("+placeholders(len(filter.AssetTypes))+")")
		for _, t := range filter.AssetTypes {
			args = append(args, string(t))
		}
	}

	query := "SELECT " + assetColumns + " FROM assets WHERE " + strings.Join(where, " AND ") + " ORDER BY symbol"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	return scanAssets(rows)
}

// GetBySymbol returns the asset or domain.ErrNotFound
func (r *AssetRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+assetColumns+" FROM assets WHERE symbol = ?", strings.TrimSpace(symbol))

	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset %s: %w", symbol, err)
	}
	return &asset, nil
}

// List returns one page of active assets and the total match count
func (r *AssetRepository) List(ctx context.Context, filter ListFilter) ([]domain.Asset, int, error) {
	filter = filter.normalize()

	where := []string{"is_active = 1"}
	var args []interface{}
	if filter.Market != "" {
		where = append(where, "market = ?")
		args = append(args, string(filter.Market))
	}
	if filter.AssetType != "" {
		where = append(where, "asset_type = ?")
		args = append(args, string(filter.AssetType))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "(symbol LIKE ? OR name LIKE ? OR COALESCE(name_ja, '') LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like, like)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets WHERE "+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	query := "SELECT " + assetColumns + " FROM assets WHERE " + clause + " ORDER BY symbol LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, filter.PerPage, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	assets, err := scanAssets(rows)
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// UpsertAssets inserts assets whose symbol is not yet stored and returns how
// many were inserted. Existing rows are left untouched.
func (r *AssetRepository) UpsertAssets(ctx context.Context, assets []domain.Asset) (int, error) {
	inserted := 0
	now := r.now().Unix()

	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO assets (symbol, name, name_ja, asset_type, market, currency, sector, description, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT(symbol) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare asset insert: %w", err)
		}
		defer stmt.Close()

		for _, a := range assets {
			res, err := stmt.ExecContext(ctx, a.Symbol, a.Name, nullString(a.NameJA), string(a.AssetType),
				string(a.Market), string(a.Currency), nullString(a.Sector), nullString(a.Description), now, now)
			if err != nil {
				return fmt.Errorf("failed to insert asset %s: %w", a.Symbol, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Debug().Int("inserted", inserted).Int("requested", len(assets)).Msg("Upserted assets")
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(row rowScanner) (domain.Asset, error) {
	var a domain.Asset
	var nameJA, sector, description sql.NullString
	var assetType, market, currency string
	var active, createdAt, updatedAt int64

	err := row.Scan(
		&a.ID,
		&a.Symbol,
		&a.Name,
		&nameJA,
		&assetType,
		&market,
		&currency,
		&sector,
		&description,
		&active,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return a, err
	}

	a.NameJA = nameJA.String
	a.Sector = sector.String
	a.Description = description.String
	a.AssetType = domain.AssetType(assetType)
	a.Market = domain.Market(market)
	a.Currency = domain.Currency(currency)
	a.IsActive = active != 0
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	a.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return a, nil
}

func scanAssets(rows *sql.Rows) ([]domain.Asset, error) {
	assets := []domain.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
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

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

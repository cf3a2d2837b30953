package universe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
)

// IndicatorRepository stores economic indicator observations on SQLite
type IndicatorRepository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewIndicatorRepository creates a new indicator repository
func NewIndicatorRepository(db *sql.DB, log zerolog.Logger) *IndicatorRepository {
	return &IndicatorRepository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repo", "indicator").Logger(),
	}
}

// Latest returns the most recent observation of the indicator, or nil when
// none was ever stored.
func (r *IndicatorRepository) Latest(ctx context.Context, indicatorType domain.IndicatorType) (*domain.Indicator, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT indicator_type, indicator_name, value, currency, date, source
		FROM economic_indicators
		WHERE indicator_type = ?
		ORDER BY date DESC
		LIMIT 1
	`, string(indicatorType))

	var ind domain.Indicator
	var typ, date string
	var currency sql.NullString
	err := row.Scan(&typ, &ind.Name, &ind.Value, &currency, &date, &ind.Source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query indicator %s: %w", indicatorType, err)
	}

	ind.Type = domain.IndicatorType(typ)
	ind.Currency = currency.String
	if ind.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	return &ind, nil
}

// LatestAll returns the latest observation of every indicator type that has one
func (r *IndicatorRepository) LatestAll(ctx context.Context) ([]domain.Indicator, error) {
	out := []domain.Indicator{}
	for _, t := range domain.AllIndicatorTypes {
		ind, err := r.Latest(ctx, t)
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
func (r *IndicatorRepository) UpsertIndicator(ctx context.Context, ind domain.Indicator) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO economic_indicators (indicator_type, indicator_name, value, currency, date, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(indicator_type, date) DO UPDATE SET
			indicator_name = excluded.indicator_name,
			value = excluded.value,
			currency = excluded.currency,
			source = excluded.source
	`, string(ind.Type), ind.Name, ind.Value, nullString(ind.Currency), ind.Date.Format(dateLayout), ind.Source, r.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert indicator %s: %w", ind.Type, err)
	}
	return nil
}

package advisor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// UsageRepository stores usage records on SQLite
type UsageRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *sql.DB, log zerolog.Logger) *UsageRepository {
	return &UsageRepository{
		db:  db,
		log: log.With().Str("repo", "usage").Logger(),
	}
}

var _ UsageStore = (*UsageRepository)(nil)

// Insert appends one record
func (r *UsageRepository) Insert(ctx context.Context, rec UsageRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_usage_logs
			(id, endpoint, model, input_tokens, output_tokens, estimated_cost_usd, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Endpoint, rec.Model, rec.InputTokens, rec.OutputTokens,
		rec.EstimatedCostUSD, rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}
	return nil
}

// TotalsSince sums usage created at or after since
func (r *UsageRepository) TotalsSince(ctx context.Context, since time.Time) (UsageTotals, error) {
	var t UsageTotals
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0),
		       COALESCE(SUM(estimated_cost_usd), 0)
		FROM api_usage_logs
		WHERE created_at >= ?
	`, since.Unix()).Scan(&t.InputTokens, &t.OutputTokens, &t.EstimatedCostUSD)
	if err != nil {
		return UsageTotals{}, fmt.Errorf("failed to aggregate usage: %w", err)
	}
	return t, nil
}

// DeleteOlderThan removes records created before cutoff
func (r *UsageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_usage_logs WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete usage logs: %w", err)
	}
	return res.RowsAffected()
}

// PostgresUsageRepository stores usage records on Postgres
type PostgresUsageRepository struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgresUsageRepository creates a usage store backed by pool
func NewPostgresUsageRepository(pool *pgxpool.Pool, log zerolog.Logger) *PostgresUsageRepository {
	return &PostgresUsageRepository{
		pool: pool,
		log:  log.With().Str("repo", "usage_postgres").Logger(),
	}
}

var _ UsageStore = (*PostgresUsageRepository)(nil)

// Insert appends one record
func (r *PostgresUsageRepository) Insert(ctx context.Context, rec UsageRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO api_usage_logs
			(id, endpoint, model, input_tokens, output_tokens, estimated_cost_usd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.Endpoint, rec.Model, rec.InputTokens, rec.OutputTokens,
		rec.EstimatedCostUSD, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}
	return nil
}

// TotalsSince sums usage created at or after since
func (r *PostgresUsageRepository) TotalsSince(ctx context.Context, since time.Time) (UsageTotals, error) {
	var t UsageTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(input_tokens), 0)::BIGINT,
		       COALESCE(SUM(output_tokens), 0)::BIGINT,
		       COALESCE(SUM(estimated_cost_usd), 0)::DOUBLE PRECISION
		FROM api_usage_logs
		WHERE created_at >= $1
	`, since).Scan(&t.InputTokens, &t.OutputTokens, &t.EstimatedCostUSD)
	if err != nil {
		return UsageTotals{}, fmt.Errorf("failed to aggregate usage: %w", err)
	}
	return t, nil
}

// DeleteOlderThan removes records created before cutoff
func (r *PostgresUsageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM api_usage_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete usage logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

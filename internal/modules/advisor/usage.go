package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/portfolio-advisor/pkg/formulas"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	dailyBudgetMessage   = "本日のAI利用上限に達しました。明日以降に再度お試しください。"
	monthlyBudgetMessage = "今月のAI利用上限に達しました。来月以降に再度お試しください。"
)

// Pricing is the USD price per one million tokens
type Pricing struct {
	Input  float64
	Output float64
}

// TokenPricing lists known model prices; unknown models use DefaultPricing
var TokenPricing = map[string]Pricing{
	"gpt-4o-mini":  {Input: 0.15, Output: 0.60},
	"gpt-4o":       {Input: 2.50, Output: 10.00},
	"gpt-4.1-mini": {Input: 0.40, Output: 1.60},
	"gpt-4.1":      {Input: 2.00, Output: 8.00},
}

// DefaultPricing applies to models missing from TokenPricing
var DefaultPricing = Pricing{Input: 3.00, Output: 15.00}

// EstimateCost returns the USD cost of a call
func EstimateCost(model string, inputTokens, outputTokens int64) float64 {
	p, ok := TokenPricing[model]
	if !ok {
		p = DefaultPricing
	}
	return (float64(inputTokens)*p.Input + float64(outputTokens)*p.Output) / 1_000_000
}

// UsageRecord is one row of the usage ledger
type UsageRecord struct {
	CreatedAt        time.Time
	ID               string
	Endpoint         string
	Model            string
	InputTokens      int64
	OutputTokens     int64
	EstimatedCostUSD float64
}

// UsageTotals aggregates usage since some instant
type UsageTotals struct {
	InputTokens      int64
	OutputTokens     int64
	EstimatedCostUSD float64
}

// TotalTokens is input plus output
func (t UsageTotals) TotalTokens() int64 {
	return t.InputTokens + t.OutputTokens
}

// UsageStore persists usage records
type UsageStore interface {
	Insert(ctx context.Context, rec UsageRecord) error
	TotalsSince(ctx context.Context, since time.Time) (UsageTotals, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Budget holds token limits; zero disables a limit
type Budget struct {
	DailyTokens   int64
	MonthlyTokens int64
}

// BudgetExceededError is returned when a token budget is used up
type BudgetExceededError struct {
	Message string
}

func (e *BudgetExceededError) Error() string {
	return e.Message
}

// DailyUsage is today's usage against the daily budget
type DailyUsage struct {
	Date             string  `json:"date"`
	InputTokens      int64   `json:"input_tokens"`
	OutputTokens     int64   `json:"output_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	BudgetTokens     int64   `json:"budget_tokens"`
	RemainingTokens  int64   `json:"remaining_tokens"`
}

// MonthlyUsage is this month's usage against the monthly budget
type MonthlyUsage struct {
	Month            string  `json:"month"`
	InputTokens      int64   `json:"input_tokens"`
	OutputTokens     int64   `json:"output_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	BudgetTokens     int64   `json:"budget_tokens"`
	RemainingTokens  int64   `json:"remaining_tokens"`
}

// UsageSummary is returned by GET /usage
type UsageSummary struct {
	Daily   DailyUsage   `json:"daily"`
	Monthly MonthlyUsage `json:"monthly"`
}

// Tracker enforces token budgets and records usage. Days and months are
// bounded in UTC.
type Tracker struct {
	store  UsageStore
	now    func() time.Time
	log    zerolog.Logger
	budget Budget
}

// NewTracker creates a tracker over store
func NewTracker(store UsageStore, budget Budget, log zerolog.Logger) *Tracker {
	return &Tracker{
		store:  store,
		budget: budget,
		now:    time.Now,
		log:    log.With().Str("component", "usage_tracker").Logger(),
	}
}

func (t *Tracker) dayStart() time.Time {
	n := t.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (t *Tracker) monthStart() time.Time {
	n := t.now().UTC()
	return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CheckBudget returns a BudgetExceededError once today's or this month's
// tokens reach their budget.
func (t *Tracker) CheckBudget(ctx context.Context) error {
	if t.budget.DailyTokens > 0 {
		daily, err := t.store.TotalsSince(ctx, t.dayStart())
		if err != nil {
			return fmt.Errorf("failed to load daily usage: %w", err)
		}
		if daily.TotalTokens() >= t.budget.DailyTokens {
			return &BudgetExceededError{Message: dailyBudgetMessage}
		}
	}
	if t.budget.MonthlyTokens > 0 {
		monthly, err := t.store.TotalsSince(ctx, t.monthStart())
		if err != nil {
			return fmt.Errorf("failed to load monthly usage: %w", err)
		}
		if monthly.TotalTokens() >= t.budget.MonthlyTokens {
			return &BudgetExceededError{Message: monthlyBudgetMessage}
		}
	}
	return nil
}

// Record stores one call with its estimated cost
func (t *Tracker) Record(ctx context.Context, endpoint, model string, inputTokens, outputTokens int64) error {
	cost := formulas.Round(EstimateCost(model, inputTokens, outputTokens), 6)
	rec := UsageRecord{
		ID:               uuid.NewString(),
		Endpoint:         endpoint,
		Model:            model,
		InputTokens:      inputTokens,
		OutputTokens:     outputTokens,
		EstimatedCostUSD: cost,
		CreatedAt:        t.now().UTC(),
	}
	if err := t.store.Insert(ctx, rec); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	t.log.Info().
		Str("endpoint", endpoint).
		Str("model", model).
		Int64("input_tokens", inputTokens).
		Int64("output_tokens", outputTokens).
		Float64("cost_usd", cost).
		Msg("Usage recorded")
	return nil
}

// Summary returns daily and monthly totals with remaining budget
func (t *Tracker) Summary(ctx context.Context) (*UsageSummary, error) {
	dayStart := t.dayStart()
	daily, err := t.store.TotalsSince(ctx, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily usage: %w", err)
	}
	monthly, err := t.store.TotalsSince(ctx, t.monthStart())
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly usage: %w", err)
	}

	return &UsageSummary{
		Daily: DailyUsage{
			Date:             dayStart.Format("2006-01-02"),
			InputTokens:      daily.InputTokens,
			OutputTokens:     daily.OutputTokens,
			TotalTokens:      daily.TotalTokens(),
			EstimatedCostUSD: formulas.Round(daily.EstimatedCostUSD, 4),
			BudgetTokens:     t.budget.DailyTokens,
			RemainingTokens:  remaining(t.budget.DailyTokens, daily.TotalTokens()),
		},
		Monthly: MonthlyUsage{
			Month:            dayStart.Format("2006-01"),
			InputTokens:      monthly.InputTokens,
			OutputTokens:     monthly.OutputTokens,
			TotalTokens:      monthly.TotalTokens(),
			EstimatedCostUSD: formulas.Round(monthly.EstimatedCostUSD, 4),
			BudgetTokens:     t.budget.MonthlyTokens,
			RemainingTokens:  remaining(t.budget.MonthlyTokens, monthly.TotalTokens()),
		},
	}, nil
}

// Purge deletes usage rows older than retentionDays
func (t *Tracker) Purge(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention must be positive, got %d days", retentionDays)
	}
	cutoff := t.dayStart().AddDate(0, 0, -retentionDays)
	n, err := t.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge usage logs: %w", err)
	}
	t.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("Purged usage logs")
	return n, nil
}

func remaining(budget, used int64) int64 {
	if used >= budget {
		return 0
	}
	return budget - used
}

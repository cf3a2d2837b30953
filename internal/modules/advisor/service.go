// Package advisor explains portfolios with a language model and accounts for
// the tokens spent doing so.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ExplainEndpoint labels explanation calls in the usage ledger
const ExplainEndpoint = "portfolios/explain"

// ErrRateLimited is returned when explanations are requested faster than allowed
var ErrRateLimited = errors.New("リクエストが多すぎます。しばらく時間をおいて再度お試しください。")

// Service generates portfolio explanations
type Service struct {
	model   LanguageModel
	tracker *Tracker
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewService creates an explanation service. perMinute <= 0 disables throttling.
func NewService(model LanguageModel, tracker *Tracker, perMinute int, log zerolog.Logger) *Service {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return &Service{
		model:   model,
		tracker: tracker,
		limiter: limiter,
		log:     log.With().Str("component", "advisor").Logger(),
	}
}

func validateInput(in ExplainInput) error {
	if strings.TrimSpace(in.Strategy) == "" {
		return domain.NewValidationError("strategy is required")
	}
	if strings.TrimSpace(in.RiskTolerance) == "" {
		return domain.NewValidationError("risk_tolerance is required")
	}
	if len(in.Allocations) == 0 {
		return domain.NewValidationError("allocations must not be empty")
	}
	for _, a := range in.Allocations {
		if a.Symbol == "" {
			return domain.NewValidationError("allocation symbol is required")
		}
		if a.Weight < 0 || a.Weight > 1 {
			return domain.NewValidationError("allocation weight must be between 0 and 1")
		}
	}
	return nil
}

// Explain checks throttling and budgets, asks the model for an explanation and
// records the tokens it used.
func (s *Service) Explain(ctx context.Context, in ExplainInput) (string, error) {
	if err := validateInput(in); err != nil {
		return "", err
	}
	if !s.limiter.Allow() {
		return "", ErrRateLimited
	}
	if err := s.tracker.CheckBudget(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	completion, err := s.model.Complete(ctx, SystemPrompt, BuildExplainPrompt(in))
	if err != nil {
		return "", fmt.Errorf("failed to generate explanation: %w", err)
	}
	s.log.Debug().
		Str("model", s.model.Name()).
		Dur("duration", time.Since(start)).
		Msg("Explanation generated")

	// A ledger failure does not discard the reply.
	if err := s.tracker.Record(ctx, ExplainEndpoint, s.model.Name(), completion.InputTokens, completion.OutputTokens); err != nil {
		s.log.Error().Err(err).Msg("Failed to record explanation usage")
	}
	return completion.Text, nil
}

// Usage returns the current usage summary
func (s *Service) Usage(ctx context.Context) (*UsageSummary, error) {
	return s.tracker.Summary(ctx)
}

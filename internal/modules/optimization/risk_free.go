package optimization

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultRiskFreeRate is used when no treasury yield has been ingested.
const DefaultRiskFreeRate = 0.04

// RiskFreeRateSource reads the latest 10-year treasury yield as a decimal rate.
// Concurrent lookups share one query, and successful reads are cached for ttl.
type RiskFreeRateSource struct {
	fetchedAt  time.Time
	indicators domain.IndicatorProvider
	now        func() time.Time
	group      singleflight.Group
	log        zerolog.Logger
	ttl        time.Duration
	mu         sync.RWMutex
	rate       float64
}

// NewRiskFreeRateSource creates a source; ttl <= 0 disables caching
func NewRiskFreeRateSource(indicators domain.IndicatorProvider, ttl time.Duration, log zerolog.Logger) *RiskFreeRateSource {
	return &RiskFreeRateSource{
		indicators: indicators,
		ttl:        ttl,
		now:        time.Now,
		log:        log.With().Str("component", "risk_free_rate").Logger(),
	}
}

// Rate returns the current risk-free rate
func (s *RiskFreeRateSource) Rate(ctx context.Context) (float64, error) {
	if rate, ok := s.cached(); ok {
		return rate, nil
	}

	v, err, _ := s.group.Do(string(domain.IndicatorUSTreasury10Y), func() (interface{}, error) {
		ind, err := s.indicators.Latest(ctx, domain.IndicatorUSTreasury10Y)
		if err != nil {
			return nil, fmt.Errorf("failed to load treasury yield: %w", err)
		}
		rate := DefaultRiskFreeRate
		if ind != nil {
			rate = ind.Value / 100
		} else {
			s.log.Debug().Msg("No treasury yield ingested, using default risk-free rate")
		}
		s.store(rate)
		return rate, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (s *RiskFreeRateSource) cached() (float64, bool) {
	if s.ttl <= 0 {
		return 0, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fetchedAt.IsZero() || s.now().Sub(s.fetchedAt) >= s.ttl {
		return 0, false
	}
	return s.rate, true
}

func (s *RiskFreeRateSource) store(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = rate
	s.fetchedAt = s.now()
}

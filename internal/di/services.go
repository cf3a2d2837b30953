package di

import (
	"github.com/aristath/portfolio-advisor/internal/modules/advisor"
	"github.com/aristath/portfolio-advisor/internal/modules/backtest"
	"github.com/aristath/portfolio-advisor/internal/modules/market"
	"github.com/aristath/portfolio-advisor/internal/modules/optimization"
	"github.com/aristath/portfolio-advisor/internal/modules/risk"
	"github.com/aristath/portfolio-advisor/internal/modules/universe"
	"github.com/rs/zerolog"
)

// InitializeServices builds every service on top of the container's stores
func InitializeServices(container *Container, model advisor.LanguageModel, log zerolog.Logger) {
	cfg := container.Config
	store := container.Store

	container.Profiler = risk.NewProfiler()
	container.RiskFree = optimization.NewRiskFreeRateSource(store, cfg.RiskFreeTTL, log)
	container.Optimizer = optimization.NewService(store, store, container.RiskFree, cfg.Optimizer, log)
	container.Backtester = backtest.NewService(store, log)
	container.Market = market.NewService(store, store, log)
	container.Importer = universe.NewPriceImporter(store, store, log)

	container.UsageTracker = advisor.NewTracker(container.UsageStore, advisor.Budget{
		DailyTokens:   cfg.Budget.DailyTokens,
		MonthlyTokens: cfg.Budget.MonthlyTokens,
	}, log)

	if model == nil {
		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY is not set, portfolio explanations will fail")
		}
		model = advisor.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	container.Advisor = advisor.NewService(model, container.UsageTracker, cfg.ExplainPerMin, log)
}

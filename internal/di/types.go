// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/portfolio-advisor/internal/config"
	"github.com/aristath/portfolio-advisor/internal/database"
	"github.com/aristath/portfolio-advisor/internal/modules/advisor"
	"github.com/aristath/portfolio-advisor/internal/modules/backtest"
	"github.com/aristath/portfolio-advisor/internal/modules/market"
	"github.com/aristath/portfolio-advisor/internal/modules/optimization"
	"github.com/aristath/portfolio-advisor/internal/modules/risk"
	"github.com/aristath/portfolio-advisor/internal/modules/universe"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Container holds all dependencies for the application. Exactly one of DB
// and Pool is set, depending on the configured driver.
type Container struct {
	Config *config.Config

	// Storage
	DB         *database.DB
	Pool       *pgxpool.Pool
	Store      universe.Store
	UsageStore advisor.UsageStore

	// Services
	Profiler     *risk.Profiler
	RiskFree     *optimization.RiskFreeRateSource
	Optimizer    *optimization.Service
	Backtester   *backtest.Service
	Market       *market.Service
	UsageTracker *advisor.Tracker
	Advisor      *advisor.Service
	Importer     *universe.PriceImporter
}

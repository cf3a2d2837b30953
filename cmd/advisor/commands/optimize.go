package commands

import (
	"github.com/aristath/portfolio-advisor/internal/domain"
	"github.com/aristath/portfolio-advisor/internal/modules/optimization"
	"github.com/spf13/cobra"
)

var optimizeFlags struct {
	tolerance string
	horizon   string
	strategy  string
	currency  string
	markets   []string
	types     []string
	score     int
	amount    int64
	maxWeight float64
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Generate an optimized portfolio",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := optimizeFlags
		req := optimization.Request{
			RiskScore:         f.score,
			RiskTolerance:     domain.RiskTolerance(f.tolerance),
			InvestmentHorizon: f.horizon,
			Strategy:          domain.Strategy(f.strategy),
			Currency:          f.currency,
		}
		if f.amount > 0 {
			req.InvestmentAmount = &f.amount
		}
		if cmd.Flags().Changed("max-weight") || len(f.markets) > 0 || len(f.types) > 0 {
			c := optimization.DefaultConstraints()
			if cmd.Flags().Changed("max-weight") {
				c.MaxSingleAssetWeight = f.maxWeight
			}
			if len(f.markets) > 0 {
				c.IncludeMarkets = make([]domain.Market, len(f.markets))
				for i, m := range f.markets {
					c.IncludeMarkets[i] = domain.Market(m)
				}
			}
			if len(f.types) > 0 {
				c.IncludeAssetTypes = make([]domain.AssetType, len(f.types))
				for i, t := range f.types {
					c.IncludeAssetTypes[i] = domain.AssetType(t)
				}
			}
			req.Constraints = &c
		}

		container, err := openContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		portfolio, err := container.Optimizer.Optimize(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), portfolio)
	},
}

func init() {
	fl := optimizeCmd.Flags()
	fl.IntVar(&optimizeFlags.score, "score", 5, "risk score (1-10)")
	fl.StringVar(&optimizeFlags.tolerance, "tolerance", "moderate", "conservative|moderate|aggressive")
	fl.StringVar(&optimizeFlags.horizon, "horizon", "medium", "short|medium|long")
	fl.StringVar(&optimizeFlags.strategy, "strategy", "auto", "auto|min_volatility|hrp|max_sharpe|risk_parity|equal_weight")
	fl.StringVar(&optimizeFlags.currency, "currency", "JPY", "currency of the investment amount")
	fl.Int64Var(&optimizeFlags.amount, "amount", 0, "investment amount (optional)")
	fl.Float64Var(&optimizeFlags.maxWeight, "max-weight", 0.30, "maximum weight of a single asset")
	fl.StringSliceVar(&optimizeFlags.markets, "market", nil, "restrict to markets (jp, us)")
	fl.StringSliceVar(&optimizeFlags.types, "asset-type", nil, "restrict to asset types")
	rootCmd.AddCommand(optimizeCmd)
}

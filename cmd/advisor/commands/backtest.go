package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aristath/portfolio-advisor/internal/modules/backtest"
	"github.com/spf13/cobra"
)

var backtestFlags struct {
	allocs    []string
	rebalance string
	chart     string
	years     int
	initial   float64
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest a fixed allocation over recent history",
	Long: `Backtest a fixed allocation.

Example:
  go run ./cmd/advisor backtest --alloc VT=0.6 --alloc AGG=0.4 --years 5 --chart out.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := backtestFlags
		allocations, err := parseAllocations(f.allocs)
		if err != nil {
			return err
		}

		container, err := openContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		res, err := container.Backtester.Run(cmd.Context(), backtest.Request{
			Allocations:       allocations,
			PeriodYears:       f.years,
			InitialInvestment: f.initial,
			Rebalance:         backtest.RebalanceFrequency(f.rebalance),
		})
		if err != nil {
			return err
		}

		if f.chart != "" {
			png, err := backtest.RenderChart(res)
			if err != nil {
				return err
			}
			if err := os.WriteFile(f.chart, png, 0o644); err != nil {
				return fmt.Errorf("failed to write chart: %w", err)
			}
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func parseAllocations(raw []string) ([]backtest.TargetWeight, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one --alloc SYMBOL=WEIGHT is required")
	}
	out := make([]backtest.TargetWeight, 0, len(raw))
	for _, r := range raw {
		symbol, w, ok := strings.Cut(r, "=")
		if !ok || strings.TrimSpace(symbol) == "" {
			return nil, fmt.Errorf("allocation %q must be SYMBOL=WEIGHT", r)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
		if err != nil || weight < 0 || weight > 1 {
			return nil, fmt.Errorf("allocation %q needs a weight between 0 and 1", r)
		}
		out = append(out, backtest.TargetWeight{Symbol: strings.TrimSpace(symbol), Weight: weight})
	}
	return out, nil
}

func init() {
	fl := backtestCmd.Flags()
	fl.StringArrayVar(&backtestFlags.allocs, "alloc", nil, "allocation as SYMBOL=WEIGHT (repeatable)")
	fl.IntVar(&backtestFlags.years, "years", backtest.DefaultPeriodYears, "lookback in years (1-20)")
	fl.Float64Var(&backtestFlags.initial, "initial", backtest.DefaultInitialInvestment, "initial investment")
	fl.StringVar(&backtestFlags.rebalance, "rebalance", string(backtest.RebalanceQuarterly), "monthly|quarterly|annually|none")
	fl.StringVar(&backtestFlags.chart, "chart", "", "write a PNG value chart to this path")
	rootCmd.AddCommand(backtestCmd)
}

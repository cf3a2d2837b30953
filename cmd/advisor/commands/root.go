// Package commands implements the advisor operations CLI.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aristath/portfolio-advisor/internal/config"
	"github.com/aristath/portfolio-advisor/internal/di"
	"github.com/aristath/portfolio-advisor/pkg/logger"
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "Portfolio advisor operations CLI",
	Long: `Operations CLI for the portfolio advisor.

Runs against the database configured by DATABASE_DRIVER / DATABASE_URL / DATA_DIR.

Examples:
  go run ./cmd/advisor migrate
  go run ./cmd/advisor seed
  go run ./cmd/advisor import-prices prices.csv
  go run ./cmd/advisor optimize --tolerance moderate --strategy hrp
  go run ./cmd/advisor backtest --alloc VT=0.6 --alloc AGG=0.4`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// openContainer loads configuration and wires the application
func openContainer(ctx context.Context) (*di.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: true})

	container, _, err := di.Wire(ctx, cfg, log, di.Options{})
	if err != nil {
		return nil, err
	}
	return container, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

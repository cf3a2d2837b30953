package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importPricesCmd = &cobra.Command{
	Use:   "import-prices <csv>",
	Short: "Import daily prices from a CSV file",
	Long: `Import daily prices from a CSV file with the header
symbol,date,open,high,low,close,adj_close,volume

Only symbol, date and close are required. Unknown symbols are skipped and
rows failing price validation are dropped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		container, err := openContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		res, err := container.Importer.Import(cmd.Context(), f)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	rootCmd.AddCommand(importPricesCmd)
}

package commands

import (
	"fmt"

	"github.com/aristath/portfolio-advisor/internal/modules/universe"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := openContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "schema applied (%s)\n", container.DriverName())
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default asset universe (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := openContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		n, err := universe.Seed(cmd.Context(), container.Store)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d of %d assets\n", n, len(universe.SeedAssets()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

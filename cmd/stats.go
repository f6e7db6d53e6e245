package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/ev-stations-api/internal/analytics"
)

var statsCountries int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print catalog statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		engine := analytics.New(st)

		total, err := engine.TotalCount(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("stations: %d\n", total)

		counts, err := engine.CountByCountry(ctx, statsCountries)
		if err != nil {
			return err
		}
		for _, c := range counts {
			country := "(none)"
			if c.Country != nil {
				country = *c.Country
			}
			fmt.Printf("%8d  %s\n", c.Count, country)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsCountries, "countries", 10, "number of country groups to show")
	rootCmd.AddCommand(statsCmd)
}

package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ev-stations-api/internal/seed"
)

var loadCmd = &cobra.Command{
	Use:   "load <dataset.csv>",
	Short: "Bulk-load a station dataset into the store",
	Long:  "Parses a header-named CSV with the same tolerant field handling as the first-run seed and inserts every row, regardless of whether the store is empty.",
	Args:  cobra.ExactArgs(1),
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

		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open dataset %s", args[0])
		}
		defer f.Close()

		rows, err := seed.ParseDataset(f)
		if err != nil {
			return err
		}

		inserted, err := st.BulkInsertStations(ctx, rows)
		if err != nil {
			return err
		}
		zap.L().Info("dataset loaded",
			zap.Int64("stations", inserted), zap.String("path", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ev-stations-api/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ev-stations-api",
	Short: "EV charging station catalog API",
	Long:  "Serves a catalog of electric-vehicle charging stations over HTTP: station CRUD plus geospatial and aggregate analytics, seeded from a bundled dataset on first run.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

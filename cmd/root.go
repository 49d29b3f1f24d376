package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onemapsg/building-registry/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "onemap-registry",
	Short: "Geospatial registry of Singapore buildings",
	Long:  "Fetches building records from the OneMap API by postal code, diffs snapshots with change classification, and reconciles duplicate postal codes into canonical parent entries.",
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

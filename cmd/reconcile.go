package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onemapsg/building-registry/internal/dataset"
	"github.com/onemapsg/building-registry/internal/reconcile"
)

var (
	reconcileIn  string
	reconcileOut string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Resolve duplicate postal codes into parent and child entries",
	Long: `Read a delta CSV, group records by postal code, elect a canonical parent
per group, classify each record as residential or non-residential, and write
the reconciled CSV with normalized names and addresses.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		records, err := dataset.ReadDelta(reconcileIn)
		if err != nil {
			return eris.Wrap(err, "reconcile: delta")
		}

		out, stats := reconcile.Reconcile(records, reconcile.Options{
			CoordLabelPrecision: cfg.Reconcile.CoordLabelPrecision,
		})
		if err := dataset.WriteReconciled(reconcileOut, out); err != nil {
			return eris.Wrap(err, "reconcile")
		}

		zap.L().Info("reconciled output written",
			zap.String("path", reconcileOut),
			zap.Int("records", stats.Records),
			zap.Int("groups", stats.Groups),
			zap.Int("children", stats.Children),
			zap.Int("residential", stats.Residential),
			zap.Int("non_residential", stats.NonResidential),
		)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileIn, "in", "data/delta.csv", "input delta CSV path")
	reconcileCmd.Flags().StringVar(&reconcileOut, "out", "data/reconciled.csv", "output reconciled CSV path")
	rootCmd.AddCommand(reconcileCmd)
}

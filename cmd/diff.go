package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onemapsg/building-registry/internal/dataset"
	"github.com/onemapsg/building-registry/internal/diff"
)

var (
	diffPrevious string
	diffCurrent  string
	diffOut      string
	diffReport   string
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two snapshots and classify changes",
	Long: `Compare a previous and a current snapshot CSV, classify every change
(new building, name change, location change, or both) and write the delta
CSV plus a plain-text comparison report.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		previous, err := dataset.ReadSnapshot(diffPrevious)
		if err != nil {
			return eris.Wrap(err, "diff: previous snapshot")
		}
		current, err := dataset.ReadSnapshot(diffCurrent)
		if err != nil {
			return eris.Wrap(err, "diff: current snapshot")
		}

		records, summary := diff.Diff(previous, current, diff.Options{
			LocationThreshold: cfg.Diff.LocationThreshold,
		})
		if err := dataset.WriteDelta(diffOut, records); err != nil {
			return eris.Wrap(err, "diff")
		}

		report := diff.FormatReport(diffPrevious, diffCurrent, summary, time.Now())
		if diffReport != "" {
			if err := os.WriteFile(diffReport, []byte(report), 0o644); err != nil {
				return eris.Wrapf(err, "diff: write report %s", diffReport)
			}
		}
		fmt.Print(report)

		zap.L().Info("delta written",
			zap.String("path", diffOut),
			zap.Int("changes", summary.Changed()),
			zap.Int("unchanged", summary.Unchanged),
		)
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffPrevious, "previous", "", "previous snapshot CSV path")
	diffCmd.Flags().StringVar(&diffCurrent, "current", "", "current snapshot CSV path")
	diffCmd.Flags().StringVar(&diffOut, "out", "data/delta.csv", "output delta CSV path")
	diffCmd.Flags().StringVar(&diffReport, "report", "data/comparison_report.txt", "output report path, empty to skip")
	_ = diffCmd.MarkFlagRequired("previous")
	_ = diffCmd.MarkFlagRequired("current")
	rootCmd.AddCommand(diffCmd)
}

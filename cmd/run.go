package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onemapsg/building-registry/internal/dataset"
	"github.com/onemapsg/building-registry/internal/diff"
	"github.com/onemapsg/building-registry/internal/fetch"
	"github.com/onemapsg/building-registry/internal/reconcile"
	"github.com/onemapsg/building-registry/pkg/onemap"
)

var (
	runFrom     string
	runTo       string
	runPrevious string
	runDir      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, diff, and reconcile in one pass",
	Long: `Fetch a dated snapshot for the postal-code range, diff it against the
previous snapshot, and reconcile the delta. All artifacts land in the data
directory; every log line carries the same run id.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runID := uuid.NewString()
		log := zap.L().With(zap.String("run_id", runID))
		zap.ReplaceGlobals(log)

		now := time.Now()
		snapshotPath := filepath.Join(runDir, "onemap_"+now.Format("20060102")+".csv")
		errorLogPath := filepath.Join(runDir, "error_log.csv")
		deltaPath := filepath.Join(runDir, "delta.csv")
		reportPath := filepath.Join(runDir, "comparison_report.txt")
		reconciledPath := filepath.Join(runDir, "reconciled.csv")

		client := onemap.NewClient(
			onemap.WithBaseURL(cfg.API.BaseURL),
			onemap.WithRateLimit(cfg.API.RateLimit),
			onemap.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second}),
		)
		runner := fetch.NewRunner(client, cfg.Fetch)
		fetchStats, err := runner.Run(ctx, runFrom, runTo, snapshotPath, errorLogPath)
		if err != nil {
			return eris.Wrap(err, "run: fetch stage")
		}
		log.Info("fetch stage complete",
			zap.Int("records", fetchStats.Records),
			zap.Int("failures", fetchStats.Failures),
		)

		previous, err := dataset.ReadSnapshot(runPrevious)
		if err != nil {
			return eris.Wrap(err, "run: previous snapshot")
		}
		current, err := dataset.ReadSnapshot(snapshotPath)
		if err != nil {
			return eris.Wrap(err, "run: current snapshot")
		}
		deltaRecords, summary := diff.Diff(previous, current, diff.Options{
			LocationThreshold: cfg.Diff.LocationThreshold,
		})
		if err := dataset.WriteDelta(deltaPath, deltaRecords); err != nil {
			return eris.Wrap(err, "run: diff stage")
		}
		report := diff.FormatReport(runPrevious, snapshotPath, summary, now)
		if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
			return eris.Wrapf(err, "run: write report %s", reportPath)
		}
		log.Info("diff stage complete",
			zap.Int("changes", summary.Changed()),
			zap.Int("unchanged", summary.Unchanged),
		)

		reconciled, recStats := reconcile.Reconcile(deltaRecords, reconcile.Options{
			CoordLabelPrecision: cfg.Reconcile.CoordLabelPrecision,
		})
		if err := dataset.WriteReconciled(reconciledPath, reconciled); err != nil {
			return eris.Wrap(err, "run: reconcile stage")
		}
		log.Info("reconcile stage complete",
			zap.Int("groups", recStats.Groups),
			zap.Int("children", recStats.Children),
		)

		log.Info("pipeline complete",
			zap.String("snapshot", snapshotPath),
			zap.String("delta", deltaPath),
			zap.String("reconciled", reconciledPath),
		)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFrom, "from", "010000", "range start (inclusive 6-digit postal code)")
	runCmd.Flags().StringVar(&runTo, "to", "829999", "range end (inclusive 6-digit postal code)")
	runCmd.Flags().StringVar(&runPrevious, "previous", "", "previous snapshot CSV to diff against")
	runCmd.Flags().StringVar(&runDir, "dir", "data", "directory for all output artifacts")
	_ = runCmd.MarkFlagRequired("previous")
	rootCmd.AddCommand(runCmd)
}

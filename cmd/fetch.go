package main

import (
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onemapsg/building-registry/internal/fetch"
	"github.com/onemapsg/building-registry/pkg/onemap"
)

var (
	fetchFrom   string
	fetchTo     string
	fetchOut    string
	fetchErrLog string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a building snapshot for a postal-code range",
	Long: `Fetch building records from the OneMap API for every postal code in the
inclusive range and write them as a snapshot CSV. Postal codes that exhaust
all retry attempts are recorded in the error log; they never abort the run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := onemap.NewClient(
			onemap.WithBaseURL(cfg.API.BaseURL),
			onemap.WithRateLimit(cfg.API.RateLimit),
			onemap.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second}),
		)

		runner := fetch.NewRunner(client, cfg.Fetch)
		stats, err := runner.Run(ctx, fetchFrom, fetchTo, fetchOut, fetchErrLog)
		if err != nil {
			return eris.Wrap(err, "fetch")
		}

		zap.L().Info("snapshot written",
			zap.String("path", fetchOut),
			zap.Int("records", stats.Records),
			zap.Int("failures", stats.Failures),
		)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "010000", "range start (inclusive 6-digit postal code)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "829999", "range end (inclusive 6-digit postal code)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", defaultSnapshotPath(time.Now()), "output snapshot CSV path")
	fetchCmd.Flags().StringVar(&fetchErrLog, "errors", "data/error_log.csv", "output error log CSV path")
	rootCmd.AddCommand(fetchCmd)
}

// defaultSnapshotPath names a snapshot by its fetch date.
func defaultSnapshotPath(now time.Time) string {
	return "data/onemap_" + now.Format("20060102") + ".csv"
}

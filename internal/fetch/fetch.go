// Package fetch orchestrates the bulk ingestion stage: it enumerates a
// postal-code range, issues concurrent rate-limited lookups against the
// OneMap API, and materializes a snapshot plus an error log.
package fetch

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/onemapsg/building-registry/internal/config"
	"github.com/onemapsg/building-registry/internal/dataset"
	"github.com/onemapsg/building-registry/internal/model"
	"github.com/onemapsg/building-registry/internal/resilience"
	"github.com/onemapsg/building-registry/pkg/onemap"
)

// Stats summarizes one fetch run.
type Stats struct {
	Codes    int // postal codes attempted
	Records  int // building records written to the snapshot
	Failures int // postal codes that exhausted all attempts
}

// Runner executes the fetch stage.
type Runner struct {
	client onemap.Client
	cfg    config.FetchConfig
}

// NewRunner creates a fetch Runner over the given API client.
func NewRunner(client onemap.Client, cfg config.FetchConfig) *Runner {
	return &Runner{client: client, cfg: cfg}
}

// Run fetches every postal code in [lo, hi] and writes the snapshot and
// error log. Per-code failures never abort the batch: each code ends up
// either in the snapshot, in the error log, or confirmed empty. Both files
// are replaced atomically, so a re-run for the same date overwrites the
// prior artifacts entirely.
func (r *Runner) Run(ctx context.Context, lo, hi, snapshotPath, errorLogPath string) (Stats, error) {
	start, end, err := parseRange(lo, hi)
	if err != nil {
		return Stats{}, err
	}
	total := end - start + 1

	zap.L().Info("starting fetch",
		zap.String("from", lo),
		zap.String("to", hi),
		zap.Int("codes", total),
		zap.Int("concurrency", r.cfg.Concurrency),
	)

	retryCfg := resilience.RetryConfig{
		MaxAttempts:    r.cfg.MaxAttempts,
		InitialBackoff: time.Duration(r.cfg.BackoffMillis) * time.Millisecond,
		MaxBackoff:     time.Duration(r.cfg.MaxBackoffSecs) * time.Second,
	}
	attemptTimeout := time.Duration(r.cfg.AttemptTimeoutSecs) * time.Second

	var (
		mu        sync.Mutex
		records   []model.Building
		failures  []model.FetchFailure
		completed atomic.Int64
	)

	// The SetLimit gate is the only shared mutable state between requests
	// besides the result slices; the cap on in-flight lookups holds by
	// construction.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency())

	for code := start; code <= end; code++ {
		postal := formatPostal(code)
		g.Go(func() error {
			cfg := retryCfg
			cfg.OnRetry = resilience.RetryLogger(postal)

			got, attempts, err := resilience.DoVal(gCtx, cfg, func(ctx context.Context) ([]model.Building, error) {
				attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
				defer cancel()
				return r.client.Search(attemptCtx, postal)
			})

			mu.Lock()
			if err != nil {
				failures = append(failures, model.FetchFailure{
					PostalCode: postal,
					Attempts:   attempts,
					LastError:  err.Error(),
				})
			} else {
				records = append(records, got...)
			}
			mu.Unlock()

			if n := completed.Add(1); r.cfg.ProgressInterval > 0 && n%int64(r.cfg.ProgressInterval) == 0 {
				zap.L().Info("fetch progress",
					zap.Int64("completed", n),
					zap.Int("total", total),
				)
			}

			// Exhaustion of one code never cancels the others.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Stats{}, eris.Wrap(err, "fetch: wait")
	}
	if err := ctx.Err(); err != nil {
		return Stats{}, eris.Wrap(err, "fetch: cancelled")
	}

	if err := dataset.WriteSnapshot(snapshotPath, records); err != nil {
		return Stats{}, err
	}
	if err := dataset.WriteErrorLog(errorLogPath, failures); err != nil {
		return Stats{}, err
	}

	stats := Stats{Codes: total, Records: len(records), Failures: len(failures)}
	zap.L().Info("fetch complete",
		zap.Int("codes", stats.Codes),
		zap.Int("records", stats.Records),
		zap.Int("failures", stats.Failures),
	)
	return stats, nil
}

func (r *Runner) concurrency() int {
	if r.cfg.Concurrency > 0 {
		return r.cfg.Concurrency
	}
	return 20
}

// parseRange validates an inclusive 6-digit postal-code range.
func parseRange(lo, hi string) (int, int, error) {
	if !model.ValidPostalCode(lo) {
		return 0, 0, eris.Errorf("fetch: invalid range start %q", lo)
	}
	if !model.ValidPostalCode(hi) {
		return 0, 0, eris.Errorf("fetch: invalid range end %q", hi)
	}
	start, _ := strconv.Atoi(lo)
	end, _ := strconv.Atoi(hi)
	if start > end {
		return 0, 0, eris.Errorf("fetch: range start %s exceeds end %s", lo, hi)
	}
	return start, end, nil
}

func formatPostal(code int) string {
	s := strconv.Itoa(code)
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

// Package dataset reads and writes the flat CSV artifacts exchanged between
// pipeline stages: snapshots, fetch error logs, deltas, and reconciled
// outputs. Every writer is all-or-nothing (temp file + rename) so an
// interrupted run never leaves a truncated artifact, and rows are written in
// a deterministic order so identical inputs produce byte-identical files.
package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"
)

// writeAtomic writes CSV content produced by fn to path via a temp file in
// the same directory, renaming only after a successful flush. A prior file
// at path is replaced entirely, never appended to.
func writeAtomic(path string, fn func(w *csv.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "dataset: create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	w := csv.NewWriter(tmp)
	if err := fn(w); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrapf(err, "dataset: flush %s", path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "dataset: close temp file for %s", path)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return eris.Wrapf(err, "dataset: rename into %s", path)
	}
	return nil
}

// readRows opens a CSV file, validates its header against want, and returns
// the remaining rows in input order. Any malformed row is fatal: a partially
// parsed artifact cannot be trusted.
func readRows(path string, want []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(want)

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("dataset: %s is empty, expected a header row", path)
	}

	header := records[0]
	for i, col := range want {
		if header[i] != col {
			return nil, eris.Errorf("dataset: %s column %d is %q, expected %q", path, i, header[i], col)
		}
	}

	return records[1:], nil
}

// formatCoord renders an optional coordinate with minimal digits, empty when absent.
func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// parseCoordPair parses an optional coordinate pair. Both fields must be
// present or both empty.
func parseCoordPair(latStr, lonStr string) (lat, lon *float64, err error) {
	if latStr == "" && lonStr == "" {
		return nil, nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, nil, eris.New("partial coordinate pair")
	}
	latV, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "latitude %q", latStr)
	}
	lonV, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "longitude %q", lonStr)
	}
	return &latV, &lonV, nil
}

package dataset

import (
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/onemapsg/building-registry/internal/model"
)

// ErrorLogHeader is the column schema of a fetch error log.
var ErrorLogHeader = []string{"postal_code", "attempts", "last_error"}

// WriteErrorLog writes the fetch failures sorted by postal code. An empty
// failure list still produces a file with just the header, so a clean run is
// distinguishable from a run that never finished.
func WriteErrorLog(path string, failures []model.FetchFailure) error {
	sorted := make([]model.FetchFailure, len(failures))
	copy(sorted, failures)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PostalCode < sorted[j].PostalCode
	})

	return writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(ErrorLogHeader); err != nil {
			return eris.Wrap(err, "dataset: write error log header")
		}
		for _, f := range sorted {
			row := []string{f.PostalCode, strconv.Itoa(f.Attempts), f.LastError}
			if err := w.Write(row); err != nil {
				return eris.Wrapf(err, "dataset: write error log row %s", f.PostalCode)
			}
		}
		return nil
	})
}

// ReadErrorLog loads a fetch error log, preserving row order.
func ReadErrorLog(path string) ([]model.FetchFailure, error) {
	rows, err := readRows(path, ErrorLogHeader)
	if err != nil {
		return nil, err
	}

	failures := make([]model.FetchFailure, 0, len(rows))
	for i, row := range rows {
		attempts, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: %s row %d attempts", path, i+2)
		}
		failures = append(failures, model.FetchFailure{
			PostalCode: row[0],
			Attempts:   attempts,
			LastError:  row[2],
		})
	}
	return failures, nil
}

package dataset

import (
	"encoding/csv"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/onemapsg/building-registry/internal/model"
)

// ReconciledHeader is the column schema of the terminal pipeline artifact.
var ReconciledHeader = []string{
	"postal_code", "block", "street", "building_name", "latitude", "longitude",
	"change_type", "prev_name", "prev_latitude", "prev_longitude",
	"role", "category", "normalized_name", "normalized_address", "parent_score",
}

// WriteReconciled writes reconciled records atomically in the order given.
func WriteReconciled(path string, records []model.ReconciledRecord) error {
	return writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(ReconciledHeader); err != nil {
			return eris.Wrap(err, "dataset: write reconciled header")
		}
		for _, r := range records {
			row := []string{
				r.PostalCode,
				r.Block,
				r.Street,
				r.BuildingName,
				formatCoord(r.Latitude),
				formatCoord(r.Longitude),
				string(r.ChangeType),
				r.PrevName,
				formatCoord(r.PrevLat),
				formatCoord(r.PrevLon),
				string(r.Role),
				string(r.Category),
				r.NormalizedName,
				r.NormalizedAddress,
				strconv.Itoa(r.ParentScore),
			}
			if err := w.Write(row); err != nil {
				return eris.Wrapf(err, "dataset: write reconciled row %s", r.PostalCode)
			}
		}
		return nil
	})
}

// ReadReconciled loads a reconciled file, preserving row order.
func ReadReconciled(path string) ([]model.ReconciledRecord, error) {
	rows, err := readRows(path, ReconciledHeader)
	if err != nil {
		return nil, err
	}

	records := make([]model.ReconciledRecord, 0, len(rows))
	for i, row := range rows {
		b, err := buildingFromRow(row[:6])
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: %s row %d", path, i+2)
		}

		ct := model.ChangeType(row[6])
		if !validChangeTypes[ct] {
			return nil, eris.Errorf("dataset: %s row %d has unknown change type %q", path, i+2, row[6])
		}

		prevLat, prevLon, err := parseCoordPair(row[8], row[9])
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: %s row %d previous coordinates", path, i+2)
		}

		score, err := strconv.Atoi(row[14])
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: %s row %d parent score", path, i+2)
		}

		records = append(records, model.ReconciledRecord{
			DeltaRecord: model.DeltaRecord{
				Building:   b,
				ChangeType: ct,
				PrevName:   row[7],
				PrevLat:    prevLat,
				PrevLon:    prevLon,
			},
			Role:              model.Role(row[10]),
			Category:          model.Category(row[11]),
			NormalizedName:    row[12],
			NormalizedAddress: row[13],
			ParentScore:       score,
		})
	}
	return records, nil
}

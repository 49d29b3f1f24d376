package dataset

import (
	"encoding/csv"

	"github.com/rotisserie/eris"

	"github.com/onemapsg/building-registry/internal/model"
)

// DeltaHeader is the column schema of a delta file: the snapshot columns
// plus the change classification and the matched previous values.
var DeltaHeader = []string{
	"postal_code", "block", "street", "building_name", "latitude", "longitude",
	"change_type", "prev_name", "prev_latitude", "prev_longitude",
}

var validChangeTypes = map[model.ChangeType]bool{
	model.ChangeNewBuilding:     true,
	model.ChangeName:            true,
	model.ChangeLocation:        true,
	model.ChangeNameAndLocation: true,
	model.ChangeUnchanged:       true,
}

// WriteDelta writes delta records atomically in the order given. Callers are
// expected to have sorted them already; diff output order is part of its
// contract.
func WriteDelta(path string, records []model.DeltaRecord) error {
	return writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(DeltaHeader); err != nil {
			return eris.Wrap(err, "dataset: write delta header")
		}
		for _, d := range records {
			row := []string{
				d.PostalCode,
				d.Block,
				d.Street,
				d.BuildingName,
				formatCoord(d.Latitude),
				formatCoord(d.Longitude),
				string(d.ChangeType),
				d.PrevName,
				formatCoord(d.PrevLat),
				formatCoord(d.PrevLon),
			}
			if err := w.Write(row); err != nil {
				return eris.Wrapf(err, "dataset: write delta row %s", d.PostalCode)
			}
		}
		return nil
	})
}

// ReadDelta loads a delta file, preserving row order. Schema violations and
// unknown change types are fatal.
func ReadDelta(path string) ([]model.DeltaRecord, error) {
	rows, err := readRows(path, DeltaHeader)
	if err != nil {
		return nil, err
	}

	records := make([]model.DeltaRecord, 0, len(rows))
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

		records = append(records, model.DeltaRecord{
			Building:   b,
			ChangeType: ct,
			PrevName:   row[7],
			PrevLat:    prevLat,
			PrevLon:    prevLon,
		})
	}
	return records, nil
}

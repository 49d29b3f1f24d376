package dataset

import (
	"encoding/csv"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/onemapsg/building-registry/internal/model"
)

// SnapshotHeader is the column schema of a snapshot file.
var SnapshotHeader = []string{"postal_code", "block", "street", "building_name", "latitude", "longitude"}

// WriteSnapshot sorts records by (postal_code, block, street) and writes them
// atomically, replacing any prior snapshot at path.
func WriteSnapshot(path string, records []model.Building) error {
	sorted := make([]model.Building, len(records))
	copy(sorted, records)
	SortBuildings(sorted)

	return writeAtomic(path, func(w *csv.Writer) error {
		if err := w.Write(SnapshotHeader); err != nil {
			return eris.Wrap(err, "dataset: write snapshot header")
		}
		for _, b := range sorted {
			row := []string{
				b.PostalCode,
				b.Block,
				b.Street,
				b.BuildingName,
				formatCoord(b.Latitude),
				formatCoord(b.Longitude),
			}
			if err := w.Write(row); err != nil {
				return eris.Wrapf(err, "dataset: write snapshot row %s", b.PostalCode)
			}
		}
		return nil
	})
}

// ReadSnapshot loads a snapshot file, preserving row order. Schema or record
// violations are fatal.
func ReadSnapshot(path string) ([]model.Building, error) {
	rows, err := readRows(path, SnapshotHeader)
	if err != nil {
		return nil, err
	}

	buildings := make([]model.Building, 0, len(rows))
	for i, row := range rows {
		b, err := buildingFromRow(row)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: %s row %d", path, i+2)
		}
		buildings = append(buildings, b)
	}
	return buildings, nil
}

func buildingFromRow(row []string) (model.Building, error) {
	b := model.Building{
		PostalCode:   row[0],
		Block:        row[1],
		Street:       row[2],
		BuildingName: row[3],
	}
	lat, lon, err := parseCoordPair(row[4], row[5])
	if err != nil {
		return model.Building{}, err
	}
	b.Latitude, b.Longitude = lat, lon

	if err := b.Validate(); err != nil {
		return model.Building{}, err
	}
	return b, nil
}

// SortBuildings orders records by (postal_code, block, street) in place.
func SortBuildings(records []model.Building) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.PostalCode != b.PostalCode {
			return a.PostalCode < b.PostalCode
		}
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		return a.Street < b.Street
	})
}

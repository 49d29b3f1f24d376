package diff

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onemapsg/building-registry/internal/model"
)

func f64(v float64) *float64 { return &v }

func bldg(postal, block, street, name string, lat, lon float64) model.Building {
	return model.Building{
		PostalCode:   postal,
		Block:        block,
		Street:       street,
		BuildingName: name,
		Latitude:     f64(lat),
		Longitude:    f64(lon),
	}
}

func TestDiffSelfIsAllUnchanged(t *testing.T) {
	snapshot := []model.Building{
		bldg("018956", "1", "Marina Boulevard", "Tampines Mall", 1.28, 103.85),
		bldg("529536", "123", "Bedok North Road", "", 1.3321, 103.93985),
		{PostalCode: "760001", Block: "1", Street: "Yishun Ave"},
	}

	deltas, summary := Diff(snapshot, snapshot, Options{})
	assert.Empty(t, deltas, "a snapshot diffed against itself emits nothing")
	assert.Equal(t, 3, summary.Unchanged)
	assert.Zero(t, summary.Changed())
}

func TestDiffNewBuilding(t *testing.T) {
	prev := []model.Building{bldg("018956", "1", "Marina Boulevard", "", 1.28, 103.85)}
	cur := append([]model.Building{}, prev...)
	cur = append(cur, bldg("760001", "1", "Yishun Ave", "", 1.42, 103.83))

	deltas, summary := Diff(prev, cur, Options{})
	require.Len(t, deltas, 1)
	assert.Equal(t, model.ChangeNewBuilding, deltas[0].ChangeType)
	assert.Equal(t, "760001", deltas[0].PostalCode)
	assert.Equal(t, 1, summary.NewBuildings)
	assert.Equal(t, 1, summary.Unchanged)
}

func TestDiffNameChange(t *testing.T) {
	prev := []model.Building{bldg("529536", "123", "Bedok North Road", "Old Name", 1.3321, 103.93985)}
	cur := []model.Building{bldg("529536", "123", "Bedok North Road", "New Name", 1.3321, 103.93985)}

	deltas, summary := Diff(prev, cur, Options{})
	require.Len(t, deltas, 1)
	assert.Equal(t, model.ChangeName, deltas[0].ChangeType)
	assert.Equal(t, "Old Name", deltas[0].PrevName)
	assert.Equal(t, 1, summary.NameChanges)
}

func TestDiffNameComparisonIsNormalized(t *testing.T) {
	prev := []model.Building{bldg("529536", "123", "Bedok North Road", " Tampines Mall ", 1.3, 103.9)}
	cur := []model.Building{bldg("529536", "123", "Bedok North Road", "TAMPINES MALL", 1.3, 103.9)}

	deltas, _ := Diff(prev, cur, Options{})
	assert.Empty(t, deltas, "case and whitespace differences are not a name change")
}

func TestDiffNameFallsBackToStreet(t *testing.T) {
	// Both names absent: the street carries the identity.
	prev := []model.Building{bldg("529536", "123", "Bedok North Road", "", 1.3, 103.9)}
	cur := []model.Building{bldg("529536", "123", "Bedok North Street 1", "", 1.3, 103.9)}

	deltas, _ := Diff(prev, cur, Options{})
	require.Len(t, deltas, 1)
	assert.Equal(t, model.ChangeName, deltas[0].ChangeType)
}

func TestDiffLocationThresholdIsStrict(t *testing.T) {
	// Exactly-representable drift values so the strict inequality is
	// exercised without float rounding noise: threshold 0.5, drift 0.5.
	base := bldg("529536", "123", "Bedok North Road", "", 1.0, 103.0)
	opts := Options{LocationThreshold: 0.5}

	cases := []struct {
		name    string
		latDiff float64
		lonDiff float64
		want    model.ChangeType
	}{
		{"exactly at threshold is unchanged", 0.5, 0, model.ChangeUnchanged},
		{"above threshold on lat", 0.75, 0, model.ChangeLocation},
		{"above threshold on lon", 0, 0.75, model.ChangeLocation},
		{"below threshold", 0.25, 0.25, model.ChangeUnchanged},
		{"negative drift above threshold", -0.75, 0, model.ChangeLocation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			moved := base
			moved.Latitude = f64(*base.Latitude + tc.latDiff)
			moved.Longitude = f64(*base.Longitude + tc.lonDiff)

			deltas, _ := Diff([]model.Building{base}, []model.Building{moved}, opts)
			if tc.want == model.ChangeUnchanged {
				assert.Empty(t, deltas)
			} else {
				require.Len(t, deltas, 1)
				assert.Equal(t, tc.want, deltas[0].ChangeType)
			}
		})
	}
}

func TestDiffMissingCoordinatesNeverALocationChange(t *testing.T) {
	prev := []model.Building{{PostalCode: "529536", Block: "123", Street: "Bedok North Road"}}
	cur := []model.Building{bldg("529536", "123", "Bedok North Road", "", 1.33, 103.93)}

	deltas, _ := Diff(prev, cur, Options{})
	assert.Empty(t, deltas, "a coordinate pair appearing is not a move")
}

func TestDiffNameAndLocationChange(t *testing.T) {
	// The Bedok North Plaza example: name gained and coordinates shifted 0.0002°.
	prev := []model.Building{bldg("529536", "123", "Bedok North Road", "", 1.3321, 103.93985)}
	cur := []model.Building{bldg("529536", "123", "Bedok North Road", "Bedok North Plaza", 1.3323, 103.93985)}

	deltas, summary := Diff(prev, cur, Options{})
	require.Len(t, deltas, 1)
	assert.Equal(t, model.ChangeNameAndLocation, deltas[0].ChangeType)
	assert.Equal(t, 1, summary.BothChanges)
	require.NotNil(t, deltas[0].PrevLat)
	assert.InDelta(t, 1.3321, *deltas[0].PrevLat, 1e-9)
}

func TestDiffCustomThreshold(t *testing.T) {
	prev := []model.Building{bldg("529536", "123", "Bedok North Road", "", 1.3321, 103.93985)}
	cur := []model.Building{bldg("529536", "123", "Bedok North Road", "", 1.3326, 103.93985)}

	deltas, _ := Diff(prev, cur, Options{LocationThreshold: 0.001})
	assert.Empty(t, deltas, "0.0005 drift is under a 0.001 threshold")

	deltas, _ = Diff(prev, cur, Options{})
	assert.Len(t, deltas, 1)
}

func TestDiffSecondaryKeyMatching(t *testing.T) {
	// Two records share a postal code; pairing must follow (block, street)
	// equality, not input position.
	prev := []model.Building{
		bldg("018956", "1", "Marina Boulevard", "Tower One", 1.28, 103.85),
		bldg("018956", "1B", "Marina Boulevard", "Annex", 1.2801, 103.8501),
	}
	cur := []model.Building{
		bldg("018956", "1B", "Marina Boulevard", "Annex Renamed", 1.2801, 103.8501),
		bldg("018956", "1", "Marina Boulevard", "Tower One", 1.28, 103.85),
	}

	deltas, summary := Diff(prev, cur, Options{})
	require.Len(t, deltas, 1)
	assert.Equal(t, "1B", deltas[0].Block)
	assert.Equal(t, model.ChangeName, deltas[0].ChangeType)
	assert.Equal(t, "Annex", deltas[0].PrevName)
	assert.Equal(t, 1, summary.Unchanged)
}

func TestDiffPositionalFallback(t *testing.T) {
	// No (block, street) match: the first unclaimed previous record in
	// input order is the deterministic fallback pair.
	prev := []model.Building{
		bldg("018956", "2", "Old Road", "A", 1.28, 103.85),
		bldg("018956", "3", "Old Road", "B", 1.28, 103.85),
	}
	cur := []model.Building{
		bldg("018956", "5", "New Road", "A Renamed", 1.28, 103.85),
		bldg("018956", "6", "New Road", "B Renamed", 1.28, 103.85),
	}

	deltas, summary := Diff(prev, cur, Options{})
	assert.Zero(t, summary.NewBuildings, "positional pairing consumed both previous records")
	require.Len(t, deltas, 2)
	assert.Equal(t, "A", deltas[0].PrevName)
	assert.Equal(t, "B", deltas[1].PrevName)
}

func TestDiffExcessCurrentRecordsAreNew(t *testing.T) {
	prev := []model.Building{bldg("018956", "1", "Marina Boulevard", "", 1.28, 103.85)}
	cur := []model.Building{
		bldg("018956", "1", "Marina Boulevard", "", 1.28, 103.85),
		bldg("018956", "1A", "Marina Boulevard", "", 1.28, 103.85),
	}

	deltas, summary := Diff(prev, cur, Options{})
	require.Len(t, deltas, 1)
	assert.Equal(t, model.ChangeNewBuilding, deltas[0].ChangeType)
	assert.Equal(t, "1A", deltas[0].Block)
	assert.Equal(t, 1, summary.Unchanged)
}

func TestDiffOutputSorted(t *testing.T) {
	prev := []model.Building{}
	cur := []model.Building{
		bldg("760001", "9", "Yishun Ave", "", 1.42, 103.83),
		bldg("018956", "1", "Marina Boulevard", "", 1.28, 103.85),
		bldg("529536", "123", "Bedok North Road", "", 1.33, 103.93),
	}

	deltas, _ := Diff(prev, cur, Options{})
	require.Len(t, deltas, 3)
	assert.Equal(t, "018956", deltas[0].PostalCode)
	assert.Equal(t, "529536", deltas[1].PostalCode)
	assert.Equal(t, "760001", deltas[2].PostalCode)
}

func TestFormatReport(t *testing.T) {
	s := Summary{
		Previous:        100,
		Current:         105,
		NewBuildings:    5,
		NameChanges:     2,
		LocationChanges: 1,
		BothChanges:     1,
		Unchanged:       96,
	}
	report := FormatReport("prev.csv", "curr.csv", s, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))

	assert.Contains(t, report, "Previous records: 100")
	assert.Contains(t, report, "Current records:  105")
	assert.Contains(t, report, "Total changes:    9")
	assert.Contains(t, report, "New buildings:             5")
	assert.Contains(t, report, "Net change in records: 5 (5.00%)")
	assert.Contains(t, report, "2026-08-31 12:00:00")
	assert.True(t, strings.HasSuffix(report, "\n"))
}

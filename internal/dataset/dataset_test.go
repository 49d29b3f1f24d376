package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onemapsg/building-registry/internal/model"
)

func f64(v float64) *float64 { return &v }

func sampleBuildings() []model.Building {
	return []model.Building{
		{PostalCode: "529536", Block: "123", Street: "Bedok North Road", Latitude: f64(1.3321), Longitude: f64(103.93985)},
		{PostalCode: "018956", Block: "1B", Street: "Marina Boulevard"},
		{PostalCode: "018956", Block: "1", Street: "Marina Boulevard", BuildingName: "Tampines Mall", Latitude: f64(1.28), Longitude: f64(103.85)},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	require.NoError(t, WriteSnapshot(path, sampleBuildings()))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Sorted by postal code, then block.
	assert.Equal(t, "018956", got[0].PostalCode)
	assert.Equal(t, "1", got[0].Block)
	assert.Equal(t, "1B", got[1].Block)
	assert.Equal(t, "529536", got[2].PostalCode)

	assert.Equal(t, "Tampines Mall", got[0].BuildingName)
	require.True(t, got[0].HasCoordinates())
	assert.InDelta(t, 1.28, *got[0].Latitude, 1e-9)
	assert.False(t, got[1].HasCoordinates())
}

func TestWriteSnapshotDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")

	records := sampleBuildings()
	require.NoError(t, WriteSnapshot(a, records))

	// Reverse input order; output must be byte-identical.
	reversed := []model.Building{records[2], records[1], records[0]}
	require.NoError(t, WriteSnapshot(b, reversed))

	aBytes, err := os.ReadFile(a)
	require.NoError(t, err)
	bBytes, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, aBytes, bBytes)
}

func TestWriteSnapshotOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	require.NoError(t, WriteSnapshot(path, sampleBuildings()))
	require.NoError(t, WriteSnapshot(path, sampleBuildings()[:1]))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, got, 1, "rewrite replaces, never appends")
}

func TestReadSnapshotMissingFile(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestReadSnapshotBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	require.NoError(t, os.WriteFile(path, []byte("postal,blk,road,name,lat,lon\n"), 0o644))
	_, err := ReadSnapshot(path)
	assert.Error(t, err)
}

func TestReadSnapshotRejectsMalformedRows(t *testing.T) {
	head := "postal_code,block,street,building_name,latitude,longitude\n"
	cases := map[string]string{
		"bad postal code": head + "52953,123,Bedok North Road,,1.33,103.93\n",
		"partial coords":  head + "529536,123,Bedok North Road,,1.33,\n",
		"unparseable lat": head + "529536,123,Bedok North Road,,north,103.93\n",
		"short row":       head + "529536,123\n",
		"empty file":      "",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snapshot.csv")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			_, err := ReadSnapshot(path)
			assert.Error(t, err)
		})
	}
}

func TestErrorLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.csv")
	failures := []model.FetchFailure{
		{PostalCode: "760001", Attempts: 3, LastError: "onemap: status 503"},
		{PostalCode: "018956", Attempts: 1, LastError: "onemap: status 403"},
	}
	require.NoError(t, WriteErrorLog(path, failures))

	got, err := ReadErrorLog(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "018956", got[0].PostalCode, "sorted by postal code")
	assert.Equal(t, 1, got[0].Attempts)
	assert.Equal(t, "760001", got[1].PostalCode)
	assert.Equal(t, "onemap: status 503", got[1].LastError)
}

func TestErrorLogEmptyStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.csv")
	require.NoError(t, WriteErrorLog(path, nil))

	got, err := ReadErrorLog(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeltaRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delta.csv")
	records := []model.DeltaRecord{
		{
			Building: model.Building{
				PostalCode: "529536", Block: "123", Street: "Bedok North Road",
				BuildingName: "Bedok North Plaza", Latitude: f64(1.3323), Longitude: f64(103.93985),
			},
			ChangeType: model.ChangeNameAndLocation,
			PrevName:   "",
			PrevLat:    f64(1.3321),
			PrevLon:    f64(103.93985),
		},
		{
			Building:   model.Building{PostalCode: "018956", Block: "1", Street: "Marina Boulevard"},
			ChangeType: model.ChangeNewBuilding,
		},
	}
	require.NoError(t, WriteDelta(path, records))

	got, err := ReadDelta(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.ChangeNameAndLocation, got[0].ChangeType)
	require.NotNil(t, got[0].PrevLat)
	assert.InDelta(t, 1.3321, *got[0].PrevLat, 1e-9)
	assert.Equal(t, model.ChangeNewBuilding, got[1].ChangeType)
	assert.Nil(t, got[1].PrevLat)
}

func TestReadDeltaUnknownChangeType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delta.csv")
	content := "postal_code,block,street,building_name,latitude,longitude,change_type,prev_name,prev_latitude,prev_longitude\n" +
		"529536,123,Bedok North Road,,,,renamed,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	_, err := ReadDelta(path)
	assert.Error(t, err)
}

func TestReconciledRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconciled.csv")
	records := []model.ReconciledRecord{
		{
			DeltaRecord: model.DeltaRecord{
				Building: model.Building{
					PostalCode: "018956", Block: "1", Street: "Marina Boulevard",
					BuildingName: "Tampines Mall", Latitude: f64(1.28), Longitude: f64(103.85),
				},
				ChangeType: model.ChangeNewBuilding,
			},
			Role:              model.RoleParent,
			Category:          model.CategoryNonResidential,
			NormalizedName:    "Tampines Mall",
			NormalizedAddress: "1 Marina Boulevard Tampines Mall, Singapore 018956",
			ParentScore:       10,
		},
	}
	require.NoError(t, WriteReconciled(path, records))

	got, err := ReadReconciled(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.RoleParent, got[0].Role)
	assert.Equal(t, model.CategoryNonResidential, got[0].Category)
	assert.Equal(t, "Tampines Mall", got[0].NormalizedName)
	assert.Equal(t, 10, got[0].ParentScore)
}

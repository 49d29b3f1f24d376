// Package diff compares two snapshots and classifies every current record's
// change against its previous-snapshot counterpart.
package diff

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/onemapsg/building-registry/internal/model"
)

// DefaultLocationThreshold is the coordinate drift, in degrees, above which
// a record counts as moved (~10 meters).
const DefaultLocationThreshold = 0.0001

// Options configures a comparison run.
type Options struct {
	// LocationThreshold overrides DefaultLocationThreshold when positive.
	LocationThreshold float64
}

// Summary counts records per change type across one comparison.
type Summary struct {
	Previous        int
	Current         int
	NewBuildings    int
	NameChanges     int
	LocationChanges int
	BothChanges     int
	Unchanged       int
}

// Changed returns the number of emitted delta records.
func (s Summary) Changed() int {
	return s.NewBuildings + s.NameChanges + s.LocationChanges + s.BothChanges
}

// Diff joins previous and current snapshots by postal code and classifies
// each current record. Only changed and new records are returned, sorted by
// (postal_code, block, street); unchanged records are counted in the
// Summary but not emitted. Previous-only records are dropped.
func Diff(previous, current []model.Building, opts Options) ([]model.DeltaRecord, Summary) {
	threshold := opts.LocationThreshold
	if threshold <= 0 {
		threshold = DefaultLocationThreshold
	}

	summary := Summary{Previous: len(previous), Current: len(current)}

	prevByPostal := make(map[string][]model.Building)
	for _, b := range previous {
		prevByPostal[b.PostalCode] = append(prevByPostal[b.PostalCode], b)
	}

	var deltas []model.DeltaRecord
	claimed := make(map[string][]bool, len(prevByPostal))

	for _, cur := range current {
		group := prevByPostal[cur.PostalCode]
		if claimed[cur.PostalCode] == nil && len(group) > 0 {
			claimed[cur.PostalCode] = make([]bool, len(group))
		}

		idx := matchPrevious(cur, group, claimed[cur.PostalCode])
		if idx < 0 {
			summary.NewBuildings++
			deltas = append(deltas, model.DeltaRecord{
				Building:   cur,
				ChangeType: model.ChangeNewBuilding,
			})
			continue
		}
		claimed[cur.PostalCode][idx] = true
		prev := group[idx]

		ct := classify(prev, cur, threshold)
		switch ct {
		case model.ChangeName:
			summary.NameChanges++
		case model.ChangeLocation:
			summary.LocationChanges++
		case model.ChangeNameAndLocation:
			summary.BothChanges++
		case model.ChangeUnchanged:
			summary.Unchanged++
			continue
		}

		deltas = append(deltas, model.DeltaRecord{
			Building:   cur,
			ChangeType: ct,
			PrevName:   prev.BuildingName,
			PrevLat:    prev.Latitude,
			PrevLon:    prev.Longitude,
		})
	}

	sort.SliceStable(deltas, func(i, j int) bool {
		a, b := deltas[i], deltas[j]
		if a.PostalCode != b.PostalCode {
			return a.PostalCode < b.PostalCode
		}
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		return a.Street < b.Street
	})

	zap.L().Info("diff complete",
		zap.Int("previous", summary.Previous),
		zap.Int("current", summary.Current),
		zap.Int("new_buildings", summary.NewBuildings),
		zap.Int("name_changes", summary.NameChanges),
		zap.Int("location_changes", summary.LocationChanges),
		zap.Int("name_and_location_changes", summary.BothChanges),
		zap.Int("unchanged", summary.Unchanged),
	)

	return deltas, summary
}

// matchPrevious pairs cur against the unclaimed previous records at its
// postal code: first by case-insensitive (block, street) equality, then
// positionally (first unclaimed record in input order). Returns -1 when the
// group is exhausted.
func matchPrevious(cur model.Building, group []model.Building, claimed []bool) int {
	for i, prev := range group {
		if claimed[i] {
			continue
		}
		if model.NormalizeText(prev.Block) == model.NormalizeText(cur.Block) &&
			model.NormalizeText(prev.Street) == model.NormalizeText(cur.Street) {
			return i
		}
	}
	for i := range group {
		if !claimed[i] {
			return i
		}
	}
	return -1
}

// classify compares a matched pair. The name comparison uses building_name,
// falling back to street when both names are absent; the location comparison
// is a strict inequality against the threshold, so drift of exactly the
// threshold is not a change.
func classify(prev, cur model.Building, threshold float64) model.ChangeType {
	nameChanged := nameDiffers(prev, cur)
	locChanged := locationDiffers(prev, cur, threshold)

	switch {
	case nameChanged && locChanged:
		return model.ChangeNameAndLocation
	case nameChanged:
		return model.ChangeName
	case locChanged:
		return model.ChangeLocation
	default:
		return model.ChangeUnchanged
	}
}

func nameDiffers(prev, cur model.Building) bool {
	prevName := model.NormalizeText(prev.BuildingName)
	curName := model.NormalizeText(cur.BuildingName)
	if prevName == "" && curName == "" {
		return model.NormalizeText(prev.Street) != model.NormalizeText(cur.Street)
	}
	return prevName != curName
}

func locationDiffers(prev, cur model.Building, threshold float64) bool {
	if !prev.HasCoordinates() || !cur.HasCoordinates() {
		return false
	}
	return math.Abs(*prev.Latitude-*cur.Latitude) > threshold ||
		math.Abs(*prev.Longitude-*cur.Longitude) > threshold
}

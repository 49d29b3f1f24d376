// Package model defines the record types flowing through the registry pipeline.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ChangeType classifies how a building differs between two snapshots.
type ChangeType string

const (
	ChangeNewBuilding     ChangeType = "new_building"
	ChangeName            ChangeType = "name_change"
	ChangeLocation        ChangeType = "location_change"
	ChangeNameAndLocation ChangeType = "name_and_location_change"
	ChangeUnchanged       ChangeType = "unchanged"
)

// Role marks a record as the canonical entry for its postal code or a duplicate.
type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

// Category is the residential/non-residential classification of a building.
type Category string

const (
	CategoryResidential    Category = "residential"
	CategoryNonResidential Category = "non_residential"
)

// Building is one raw record fetched from the OneMap search API. A postal
// code is not unique: several buildings inside a complex may share one.
type Building struct {
	PostalCode   string
	Block        string
	Street       string
	BuildingName string

	// Latitude and Longitude are either both set or both nil.
	Latitude  *float64
	Longitude *float64
}

// HasCoordinates reports whether the record carries a coordinate pair.
func (b Building) HasCoordinates() bool {
	return b.Latitude != nil && b.Longitude != nil
}

// Validate checks the record invariants: a well-formed 6-digit postal code
// and a coordinate pair that is never partially populated.
func (b Building) Validate() error {
	if !ValidPostalCode(b.PostalCode) {
		return eris.Errorf("model: invalid postal code %q", b.PostalCode)
	}
	if (b.Latitude == nil) != (b.Longitude == nil) {
		return eris.Errorf("model: postal code %s has a partial coordinate pair", b.PostalCode)
	}
	return nil
}

// ValidPostalCode reports whether s is a well-formed Singapore postal code
// (exactly six ASCII digits).
func ValidPostalCode(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// DeltaRecord is a Building annotated with its change classification against
// the previous snapshot. The Prev* fields carry the matched previous values
// for audit and are empty for new buildings.
type DeltaRecord struct {
	Building
	ChangeType ChangeType

	PrevName string
	PrevLat  *float64
	PrevLon  *float64
}

// ReconciledRecord is the terminal artifact of the pipeline: a DeltaRecord
// with its role within the postal-code group, a best-effort category, and
// normalized name/address fields.
type ReconciledRecord struct {
	DeltaRecord
	Role              Role
	Category          Category
	NormalizedName    string
	NormalizedAddress string
	ParentScore       int
}

// FetchFailure records a postal code that exhausted all fetch attempts.
type FetchFailure struct {
	PostalCode string
	Attempts   int
	LastError  string
}

// NormalizeText trims whitespace and lowercases s for comparison purposes.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Package reconcile resolves postal codes that map to multiple raw records
// into one canonical parent entry, classifies each building, and rewrites
// name/address fields under deterministic normalization rules. Scoring and
// classification are pure functions over a single record: best-effort
// heuristics, decoupled from any I/O.
package reconcile

import (
	"regexp"

	"github.com/onemapsg/building-registry/internal/model"
)

// parentKeywords are building-name terms suggesting the record denotes an
// entire complex rather than a unit within one.
var parentKeywords = regexp.MustCompile(`(?i)\b(?:mall|plaza|centre|center|complex|building|tower|house|court|place|` +
	`terminal|station|hub|interchange|airport|` +
	`school|university|college|institute|academy|` +
	`hospital|medical|clinic|` +
	`hotel|resort|apartment|condo|condominium)\b`)

// unitIndicators match tokens that pin a name to a specific sub-unit: a
// unit/floor marker like "#01-23" or "Level 5", or an intra-complex tag.
var unitIndicators = regexp.MustCompile(`(?i)#\d+-\d+|\b(?:unit|apt|room|level|floor)\s*\d+\b|\bl\d+\b|\b(?:blk|phase)\s*[a-z0-9]+\b`)

var (
	numericBlock      = regexp.MustCompile(`^\d+$`)
	alphanumericBlock = regexp.MustCompile(`^(?:\d+[a-zA-Z]+|[a-zA-Z]+\d+|\d+-\d+)[a-zA-Z0-9-]*$`)
)

// Score rates how likely a record represents the parent building of its
// postal-code group. Higher is more likely. The heuristic weighs the block
// number format, parent keywords and unit indicators in the name, and field
// completeness.
func Score(b model.Building) int {
	score := blockScore(b.Block)

	if b.BuildingName != "" {
		if parentKeywords.MatchString(b.BuildingName) {
			score += 3
		}
		if unitIndicators.MatchString(b.BuildingName) {
			score -= 3
		}
	}

	score += completeness(b)
	return score
}

// blockScore rates the block format: a bare short number is the strongest
// parent signal, a lettered or ranged block the weakest.
func blockScore(block string) int {
	switch {
	case block == "":
		return 0
	case numericBlock.MatchString(block):
		if len(block) == 1 {
			return 3
		}
		return 2
	case alphanumericBlock.MatchString(block):
		return 1
	default:
		return 1
	}
}

// completeness counts the populated fields among block, street, building
// name, and the coordinate pair (0-4).
func completeness(b model.Building) int {
	n := 0
	if b.Block != "" {
		n++
	}
	if b.Street != "" {
		n++
	}
	if b.BuildingName != "" {
		n++
	}
	if b.HasCoordinates() {
		n++
	}
	return n
}

// better orders two equally-scored candidates: the more complete record
// wins, then the shorter street name, then the earlier input position.
func better(a, b model.Building, aIdx, bIdx int) bool {
	ca, cb := completeness(a), completeness(b)
	if ca != cb {
		return ca > cb
	}
	if len(a.Street) != len(b.Street) {
		return len(a.Street) < len(b.Street)
	}
	return aIdx < bIdx
}

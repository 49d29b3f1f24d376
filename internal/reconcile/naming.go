package reconcile

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/onemapsg/building-registry/internal/model"
)

// lowercaseParticles stay lowercase in proper-cased text unless they lead.
var lowercaseParticles = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "but": true,
	"or": true, "for": true, "nor": true, "on": true, "at": true,
	"to": true, "from": true, "by": true, "of": true, "in": true,
}

var titleCaser = cases.Title(language.English)

// properCase title-cases text word by word, keeping known Singapore
// abbreviations uppercase and connective particles lowercase.
func properCase(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		upper := strings.ToUpper(word)
		switch {
		case abbreviations[upper] != "":
			words[i] = upper
		case i > 0 && lowercaseParticles[strings.ToLower(word)]:
			words[i] = strings.ToLower(word)
		default:
			words[i] = titleCaser.String(strings.ToLower(word))
		}
	}
	return strings.Join(words, " ")
}

// isBlockToken reports whether a word looks like a block number, which is
// preserved verbatim rather than case-mangled.
func isBlockToken(word string) bool {
	return residentialBlock.MatchString(word)
}

// NormalizedName derives the canonical display name for a record.
//
// Residential buildings follow the HDB convention "<block> <Street>".
// Non-residential buildings use their proper-cased name, falling back to the
// street (with any leading block token dropped), then to a coordinate label.
func NormalizedName(b model.Building, category model.Category, coordPrecision int) string {
	block := strings.TrimSpace(b.Block)
	street := strings.TrimSpace(b.Street)
	name := strings.TrimSpace(b.BuildingName)

	if category == model.CategoryNonResidential {
		if name != "" {
			return properCaseName(name)
		}
		if street != "" {
			words := strings.Fields(street)
			if len(words) > 1 && block != "" && words[0] == block {
				return properCase(strings.Join(words[1:], " "))
			}
			return properCase(street)
		}
		if b.HasCoordinates() {
			return coordLabel(b, coordPrecision)
		}
		return "Unnamed Non-residential Location"
	}

	switch {
	case block != "" && street != "":
		return block + " " + properCase(street)
	case block != "":
		return block
	case name != "":
		return properCaseName(name)
	case street != "":
		return properCase(street)
	case b.HasCoordinates():
		return coordLabel(b, coordPrecision)
	default:
		return "Unnamed Location"
	}
}

// properCaseName proper-cases a building name, preserving a leading block
// token (like "123A") verbatim.
func properCaseName(name string) string {
	words := strings.Fields(name)
	if len(words) > 1 && isBlockToken(words[0]) {
		return words[0] + " " + properCase(strings.Join(words[1:], " "))
	}
	return properCase(name)
}

// NormalizedAddress renders "<block> <Street>[ <Name>], Singapore <postal>".
// The building name appears only for non-residential records and only when
// it is not already contained in the street; absent fields are omitted.
func NormalizedAddress(b model.Building, category model.Category) string {
	block := strings.TrimSpace(b.Block)
	street := strings.TrimSpace(b.Street)
	name := strings.TrimSpace(b.BuildingName)

	var parts []string
	if block != "" {
		parts = append(parts, block)
	}
	if street != "" {
		parts = append(parts, properCase(street))
	}
	if category == model.CategoryNonResidential && name != "" &&
		!strings.Contains(strings.ToLower(street), strings.ToLower(name)) {
		parts = append(parts, properCaseName(name))
	}

	base := strings.Join(parts, " ")
	if base == "" {
		return "Singapore " + b.PostalCode
	}
	return base + ", Singapore " + b.PostalCode
}

// coordLabel is the last-resort name: coordinates rounded to a fixed precision.
func coordLabel(b model.Building, precision int) string {
	if precision <= 0 {
		precision = 5
	}
	return fmt.Sprintf("%s, %s",
		strconv.FormatFloat(*b.Latitude, 'f', precision, 64),
		strconv.FormatFloat(*b.Longitude, 'f', precision, 64),
	)
}

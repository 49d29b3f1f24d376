package reconcile

import (
	"regexp"
	"strings"

	"github.com/onemapsg/building-registry/internal/model"
)

// nonResidentialKeywords match institutional, commercial, transport,
// religious, and industrial terms in a building name or street. Best-effort:
// the list is tuned for Singapore naming conventions, not a guaranteed
// classifier.
var nonResidentialKeywords = regexp.MustCompile(`(?i)\b(?:` +
	// education
	`school|college|university|polytechnic|institute|academy|campus|kindergarten|preschool|childcare|montessori|` +
	// transport
	`mrt|lrt|station|interchange|terminal|depot|expressway|airport|jetty|ferry|carpark|mscp|` +
	// community and sports
	`stadium|sports|swimming|recreation|club|golf|gym|library|` +
	// healthcare
	`hospital|clinic|medical|polyclinic|healthcare|pharmacy|dialysis|` +
	// shopping and commercial
	`mall|plaza|centre|center|tower|complex|retail|supermarket|bank|cinema|theatre|showroom|hotel|restaurant|hawker|market|kopitiam|office|` +
	// religious
	`temple|church|mosque|synagogue|chapel|cathedral|shrine|` +
	// government
	`ministry|government|police|parliament|court|checkpoint|` +
	// parks
	`park|garden|playground|reservoir|botanical|zoo|` +
	// industrial
	`factory|warehouse|industrial|logistics|workshop|shipyard|refinery` +
	`)\b`)

// abbreviations are Singapore institution/infrastructure abbreviations that
// mark a non-residential building even without a keyword match.
var abbreviations = map[string]string{
	"MRT":  "Mass Rapid Transit",
	"LRT":  "Light Rail Transit",
	"CTE":  "Central Expressway",
	"PIE":  "Pan Island Expressway",
	"SLE":  "Seletar Expressway",
	"BKE":  "Bukit Timah Expressway",
	"KPE":  "Kallang-Paya Lebar Expressway",
	"TPE":  "Tampines Expressway",
	"AYE":  "Ayer Rajah Expressway",
	"MCE":  "Marina Coastal Expressway",
	"ECP":  "East Coast Parkway",
	"MSCP": "Multi Storey Car Park",
	"NUS":  "National University of Singapore",
	"NTU":  "Nanyang Technological University",
	"SMU":  "Singapore Management University",
	"SUTD": "Singapore University of Technology and Design",
	"ITE":  "Institute of Technical Education",
}

// residentialBlock matches typical HDB housing-block numbers: digits with an
// optional trailing letter, like "123" or "123A".
var residentialBlock = regexp.MustCompile(`^\d+[a-zA-Z]?$`)

// Classify labels a building residential or non-residential. A keyword or
// abbreviation anywhere in the name or street wins; otherwise a bare
// housing-block number defaults to residential, and a record with neither
// signal to non-residential.
func Classify(b model.Building) model.Category {
	text := b.BuildingName + " " + b.Street
	if nonResidentialKeywords.MatchString(text) || containsAbbreviation(text) {
		return model.CategoryNonResidential
	}
	if residentialBlock.MatchString(strings.TrimSpace(b.Block)) {
		return model.CategoryResidential
	}
	return model.CategoryNonResidential
}

func containsAbbreviation(text string) bool {
	for _, tok := range strings.Fields(strings.ToUpper(text)) {
		tok = strings.Trim(tok, ",.()")
		if _, ok := abbreviations[tok]; ok {
			return true
		}
	}
	return false
}

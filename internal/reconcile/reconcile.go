package reconcile

import (
	"sort"

	"go.uber.org/zap"

	"github.com/onemapsg/building-registry/internal/model"
)

// Options configures reconciliation.
type Options struct {
	// CoordLabelPrecision is the decimal precision of last-resort
	// coordinate labels. Defaults to 5.
	CoordLabelPrecision int
}

// Stats summarizes one reconciliation run.
type Stats struct {
	Records        int
	Groups         int
	Children       int
	Residential    int
	NonResidential int
}

// Reconcile groups delta records by postal code, elects exactly one parent
// per group, classifies every record, and rewrites its normalized name and
// address. Output is sorted by postal code with the parent leading its
// group, followed by children in stable input order.
func Reconcile(records []model.DeltaRecord, opts Options) ([]model.ReconciledRecord, Stats) {
	type indexed struct {
		rec model.DeltaRecord
		pos int
	}

	groups := make(map[string][]indexed)
	var postals []string
	for i, rec := range records {
		if _, seen := groups[rec.PostalCode]; !seen {
			postals = append(postals, rec.PostalCode)
		}
		groups[rec.PostalCode] = append(groups[rec.PostalCode], indexed{rec: rec, pos: i})
	}
	sort.Strings(postals)

	stats := Stats{Records: len(records), Groups: len(groups)}
	out := make([]model.ReconciledRecord, 0, len(records))

	for _, postal := range postals {
		group := groups[postal]

		// Elect the parent: highest score, ties broken by completeness,
		// shorter street, then first-seen input order.
		parentIdx := 0
		parentScore := Score(group[0].rec.Building)
		scores := make([]int, len(group))
		scores[0] = parentScore
		ambiguous := completeness(group[0].rec.Building) == 0
		for i := 1; i < len(group); i++ {
			s := Score(group[i].rec.Building)
			scores[i] = s
			if completeness(group[i].rec.Building) > 0 {
				ambiguous = false
			}
			if s > parentScore || (s == parentScore &&
				better(group[i].rec.Building, group[parentIdx].rec.Building, group[i].pos, group[parentIdx].pos)) {
				parentIdx = i
				parentScore = s
			}
		}

		if ambiguous && len(group) > 1 {
			// Nothing to score on: keep first-seen order and move on.
			zap.L().Warn("reconcile: unscorable postal-code group, keeping first-seen order",
				zap.String("postal_code", postal),
				zap.Int("size", len(group)),
			)
			parentIdx = 0
		}

		emit := func(i int, role model.Role) {
			rec := group[i].rec
			category := Classify(rec.Building)
			if category == model.CategoryResidential {
				stats.Residential++
			} else {
				stats.NonResidential++
			}
			if role == model.RoleChild {
				stats.Children++
			}
			out = append(out, model.ReconciledRecord{
				DeltaRecord:       rec,
				Role:              role,
				Category:          category,
				NormalizedName:    NormalizedName(rec.Building, category, opts.CoordLabelPrecision),
				NormalizedAddress: NormalizedAddress(rec.Building, category),
				ParentScore:       scores[i],
			})
		}

		emit(parentIdx, model.RoleParent)
		for i := range group {
			if i != parentIdx {
				emit(i, model.RoleChild)
			}
		}
	}

	zap.L().Info("reconcile complete",
		zap.Int("records", stats.Records),
		zap.Int("groups", stats.Groups),
		zap.Int("children", stats.Children),
		zap.Int("residential", stats.Residential),
		zap.Int("non_residential", stats.NonResidential),
	)

	return out, stats
}

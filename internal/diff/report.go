package diff

import (
	"fmt"
	"strings"
	"time"
)

// FormatReport renders the human-readable comparison report.
func FormatReport(previousPath, currentPath string, s Summary, now time.Time) string {
	var b strings.Builder

	rule := strings.Repeat("=", 50)
	thin := strings.Repeat("-", 50)

	b.WriteString(rule + "\n")
	b.WriteString("BUILDING SNAPSHOT COMPARISON REPORT\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Previous snapshot: %s\n", previousPath)
	fmt.Fprintf(&b, "Current snapshot:  %s\n\n", currentPath)

	b.WriteString("STATISTICS\n")
	b.WriteString(thin + "\n")
	fmt.Fprintf(&b, "Previous records: %d\n", s.Previous)
	fmt.Fprintf(&b, "Current records:  %d\n", s.Current)
	fmt.Fprintf(&b, "Total changes:    %d\n", s.Changed())
	fmt.Fprintf(&b, "  - New buildings:             %d\n", s.NewBuildings)
	fmt.Fprintf(&b, "  - Name changes:              %d\n", s.NameChanges)
	fmt.Fprintf(&b, "  - Location changes:          %d\n", s.LocationChanges)
	fmt.Fprintf(&b, "  - Name and location changes: %d\n", s.BothChanges)
	fmt.Fprintf(&b, "Unchanged records: %d\n\n", s.Unchanged)

	b.WriteString("SUMMARY\n")
	b.WriteString(thin + "\n")
	net := s.Current - s.Previous
	if s.Previous > 0 {
		fmt.Fprintf(&b, "Net change in records: %d (%.2f%%)\n", net, float64(net)/float64(s.Previous)*100)
	} else {
		fmt.Fprintf(&b, "Net change in records: %d\n", net)
	}
	fmt.Fprintf(&b, "\nReport generated on: %s\n", now.Format("2006-01-02 15:04:05"))
	b.WriteString(rule + "\n")

	return b.String()
}

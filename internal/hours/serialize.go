package hours

import "strings"

const (
	segmentSeparator = "; "
	rangeSeparator   = ", "
)

// Serialize renders the canonical multi-segment text, one fragment per group:
//
//	월-목: 11:00-14:00, 17:00-21:00 (브레이크 14:00-17:00); 금-일: 10:00-22:00
//
// Groups that cannot be rendered (no ranges, bad day range) are skipped.
func Serialize(s Schedule) string {
	parts := make([]string, 0, len(s))
	for _, g := range s {
		if !g.Valid() {
			continue
		}
		parts = append(parts, FormatGroup(g))
	}
	return strings.Join(parts, segmentSeparator)
}

// FormatGroup renders a single fragment. The day label comes from the group's
// DayRange as authored; it is not re-derived from the weekday set.
func FormatGroup(g Group) string {
	var b strings.Builder
	b.WriteString(g.Days.Label())
	b.WriteString(": ")
	for i, r := range g.Ranges {
		if i > 0 {
			b.WriteString(rangeSeparator)
		}
		b.WriteString(r.String())
	}
	if g.Break != nil {
		b.WriteString(" (브레이크 ")
		b.WriteString(g.Break.String())
		b.WriteString(")")
	}
	return b.String()
}

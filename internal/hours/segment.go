package hours

import (
	"regexp"
	"strings"
)

var (
	// breakPattern matches a trailing "(브레이크 HH:MM-HH:MM)".
	breakPattern = regexp.MustCompile(`\(\s*브레이크\s*(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})\s*\)\s*$`)

	// strictTimesPattern accepts a time token made only of ranges separated by
	// commas or whitespace.
	strictTimesPattern = regexp.MustCompile(`^\s*\d{1,2}:\d{2}\s*-\s*\d{1,2}:\d{2}(?:\s*,?\s*\d{1,2}:\d{2}\s*-\s*\d{1,2}:\d{2})*\s*$`)
)

// ExtractBreak removes a trailing break marker from fragment. It returns the
// remaining text and the break, or nil when there is none.
func ExtractBreak(fragment string) (string, *Break) {
	rest, brk, _ := extractBreak(fragment)
	return rest, brk
}

func extractBreak(fragment string) (string, *Break, []Issue) {
	loc := breakPattern.FindStringSubmatchIndex(fragment)
	if loc == nil {
		return fragment, nil, nil
	}
	rest := strings.TrimSpace(fragment[:loc[0]])
	marker := fragment[loc[0]:loc[1]]

	start, err := ParseTimeOfDay(fragment[loc[2]:loc[3]])
	if err != nil {
		return rest, nil, []Issue{{Segment: fragment, Reason: ReasonInvalidBreak, Detail: marker}}
	}
	end, err := ParseTimeOfDay(fragment[loc[4]:loc[5]])
	if err != nil || end <= start {
		return rest, nil, []Issue{{Segment: fragment, Reason: ReasonInvalidBreak, Detail: marker}}
	}
	return rest, &Break{Start: start, End: end}, nil
}

// ParseSegment parses one "days: ranges (브레이크 ...)" fragment. The boolean
// is false when the fragment lacks a day token or a valid time range.
func ParseSegment(fragment string) (Group, bool) {
	g, _, ok := parseSegment(fragment, false)
	return g, ok
}

// parseSegment does the work for ParseSegment. With strict set, the time token
// must consist of ranges only; stray text rejects the fragment.
func parseSegment(fragment string, strict bool) (Group, []Issue, bool) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return Group{}, nil, false
	}

	rest, brk, issues := extractBreak(fragment)

	dayToken, timeToken, found := strings.Cut(rest, ":")
	if !found {
		return Group{}, append(issues, Issue{Segment: fragment, Reason: ReasonMissingSeparator}), false
	}

	days, err := ResolveDayToken(dayToken)
	if err != nil {
		return Group{}, append(issues, Issue{Segment: fragment, Reason: ReasonUnknownWeekday, Detail: strings.TrimSpace(dayToken)}), false
	}

	if strict && !strictTimesPattern.MatchString(timeToken) {
		return Group{}, append(issues, Issue{Segment: fragment, Reason: ReasonUnrecognized}), false
	}

	ranges, rangeIssues := extractTimeRanges(timeToken)
	ranges, overlapIssues := NormalizeRanges(ranges)
	for _, is := range append(rangeIssues, overlapIssues...) {
		issues = append(issues, Issue{Segment: fragment, Reason: is.Reason, Detail: is.Segment})
	}
	if len(ranges) == 0 {
		return Group{}, append(issues, Issue{Segment: fragment, Reason: ReasonNoTimeRange}), false
	}

	g := Group{Days: days, Ranges: ranges, Break: brk}
	if brk != nil {
		span := g.Span()
		if brk.Start < span.Open || brk.End > span.Close {
			issues = append(issues, Issue{Segment: fragment, Reason: ReasonBreakOutsideHours, Detail: brk.String()})
		}
	}
	return g, issues, true
}

package hours

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Dialect names, also used as metric labels.
const (
	DialectMultiSegment = "multi_segment"
	DialectEveryDay     = "every_day"
	DialectLegacy       = "legacy_scan"
)

// Dialect is one textual encoding of a schedule. Parse returns no groups when
// the dialect does not apply to raw.
type Dialect struct {
	Name  string
	Parse func(raw string) ([]Group, []Issue)
}

// Dialects is the fallback chain, tried in order; the first dialect yielding
// at least one group wins.
var Dialects = []Dialect{
	{Name: DialectMultiSegment, Parse: parseMultiSegment},
	{Name: DialectEveryDay, Parse: parseEveryDay},
	{Name: DialectLegacy, Parse: parseLegacy},
}

var (
	everyDayPattern = regexp.MustCompile(`^(?:매일\s*)?(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})$`)

	legacyRangePattern    = regexp.MustCompile(`([일월화수목금토])(?:요일)?\s*-\s*([일월화수목금토])(?:요일)?\s*:\s*(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
	legacySinglePattern   = regexp.MustCompile(`([일월화수목금토])(?:요일)?\s*:\s*(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
	legacyEveryDayPattern = regexp.MustCompile(`매일\s*:?\s*(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
)

// Parse turns free text into a schedule. It never fails: text no dialect
// understands yields an empty schedule.
func Parse(raw string) Schedule {
	s, _ := ParseDialect(raw)
	return s
}

// ParseDialect is Parse that also names the dialect that matched, or "" when
// none did.
func ParseDialect(raw string) (Schedule, string) {
	for _, d := range Dialects {
		groups, _ := d.Parse(raw)
		if len(groups) > 0 {
			return Schedule(groups), d.Name
		}
	}
	return Schedule{}, ""
}

// parseMultiSegment handles "월-목: 11:00-14:00, 17:00-21:00; 금: ...".
// A string without ';' is accepted only when it is exactly one well-formed
// segment, which is what the serializer emits for a single group.
func parseMultiSegment(raw string) ([]Group, []Issue) {
	if !strings.Contains(raw, ";") {
		g, _, ok := parseSegment(raw, true)
		if !ok {
			return nil, nil
		}
		return []Group{g}, nil
	}

	var (
		groups []Group
		issues []Issue
	)
	for _, piece := range strings.Split(raw, ";") {
		g, segIssues, ok := parseSegment(piece, false)
		issues = append(issues, segIssues...)
		if ok {
			groups = append(groups, g)
		}
	}
	return groups, issues
}

// parseEveryDay handles "09:00-22:00" and "매일 09:00-22:00".
func parseEveryDay(raw string) ([]Group, []Issue) {
	raw = strings.TrimSpace(raw)
	m := everyDayPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, nil
	}
	tr, reason, ok := rawRange{text: raw, open: m[1], close: m[2]}.toTimeRange()
	if !ok {
		return nil, []Issue{{Segment: raw, Reason: reason}}
	}
	return []Group{{Days: EveryDay(), Ranges: []TimeRange{tr}}}, nil
}

// parseLegacy scans unseparated text. Day-range tokens are collected first and
// claim their weekdays; single-day tokens for an already claimed weekday are
// ignored. When neither yields anything, a "매일 HH:MM-HH:MM" anywhere in the
// text covers the whole week.
func parseLegacy(raw string) ([]Group, []Issue) {
	if strings.Contains(raw, ";") {
		return nil, nil
	}

	var (
		groups  []Group
		issues  []Issue
		claimed [daysInWeek]bool
	)

	for _, loc := range legacyRangePattern.FindAllStringSubmatchIndex(raw, -1) {
		if midWord(raw, loc[0]) {
			continue
		}
		m := submatches(raw, loc)
		days, err := ResolveDayToken(m[1] + "-" + m[2])
		if err != nil {
			continue
		}
		tr, reason, ok := rawRange{text: m[0], open: m[3], close: m[4]}.toTimeRange()
		if !ok {
			issues = append(issues, Issue{Segment: m[0], Reason: reason})
			continue
		}
		for _, d := range days.Days() {
			claimed[d] = true
		}
		groups = append(groups, Group{Days: days, Ranges: []TimeRange{tr}})
	}

	for _, loc := range legacySinglePattern.FindAllStringSubmatchIndex(raw, -1) {
		// "매일:" and "공휴일:" end in the Sunday glyph; neither is a Sunday token.
		if midWord(raw, loc[0]) {
			continue
		}
		text := raw[loc[0]:loc[1]]
		d, err := ParseWeekday(raw[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		if claimed[d] {
			if !coveredByRangeToken(raw, loc[0]) {
				issues = append(issues, Issue{Segment: text, Reason: ReasonDuplicateWeekday, Detail: d.Symbol()})
			}
			continue
		}
		tr, reason, ok := rawRange{text: text, open: raw[loc[4]:loc[5]], close: raw[loc[6]:loc[7]]}.toTimeRange()
		if !ok {
			issues = append(issues, Issue{Segment: text, Reason: reason})
			continue
		}
		claimed[d] = true
		groups = append(groups, Group{Days: SingleDay(d), Ranges: []TimeRange{tr}})
	}

	if len(groups) > 0 {
		return groups, issues
	}

	if m := legacyEveryDayPattern.FindStringSubmatch(raw); m != nil {
		tr, reason, ok := rawRange{text: m[0], open: m[1], close: m[2]}.toTimeRange()
		if !ok {
			return nil, append(issues, Issue{Segment: m[0], Reason: reason})
		}
		return []Group{{Days: EveryDay(), Ranges: []TimeRange{tr}}}, issues
	}
	return nil, issues
}

// coveredByRangeToken reports whether the single-day match at pos is the tail
// of an "A-B:" token, e.g. the "목:" inside "월-목:".
func coveredByRangeToken(raw string, pos int) bool {
	before := strings.TrimRight(raw[:pos], " \t")
	return strings.HasSuffix(before, "-")
}

// midWord reports whether the weekday glyph at pos continues a longer Hangul
// word rather than starting a day token.
func midWord(raw string, pos int) bool {
	r, _ := utf8.DecodeLastRuneInString(raw[:pos])
	return unicode.Is(unicode.Hangul, r)
}

func submatches(raw string, loc []int) []string {
	m := make([]string, len(loc)/2)
	for i := range m {
		if loc[2*i] >= 0 {
			m[i] = raw[loc[2*i]:loc[2*i+1]]
		}
	}
	return m
}

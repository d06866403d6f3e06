package hours

import (
	"slices"
	"strings"
)

// Reason says why a fragment, or part of one, was not used.
type Reason string

const (
	ReasonMissingSeparator  Reason = "missing ':' between days and times"
	ReasonUnknownWeekday    Reason = "unknown weekday"
	ReasonNoTimeRange       Reason = "no time range"
	ReasonInvalidTime       Reason = "invalid time"
	ReasonOvernight         Reason = "overnight range"
	ReasonOverlappingRanges Reason = "overlapping time ranges"
	ReasonInvalidBreak      Reason = "invalid break"
	ReasonBreakOutsideHours Reason = "break outside opening hours"
	ReasonDuplicateWeekday  Reason = "weekday already covered"
	ReasonUnrecognized      Reason = "unrecognized format"
)

// Issue is one problem found while parsing. Segment is the fragment it was
// found in; Detail narrows it down when useful.
type Issue struct {
	Segment string `json:"segment"`
	Reason  Reason `json:"reason"`
	Detail  string `json:"detail,omitempty"`
}

// Diagnostics is the strict-mode parse result for authoring-time linting.
type Diagnostics struct {
	Schedule Schedule `json:"schedule"`
	Dialect  string   `json:"dialect,omitempty"`
	Issues   []Issue  `json:"issues"`
}

// OK reports a parse without issues.
func (d Diagnostics) OK() bool {
	return len(d.Issues) == 0
}

// Diagnose parses raw like Parse and additionally reports every fragment or
// token that was dropped and why. Blank input is a valid "no hours" schedule.
func Diagnose(raw string) Diagnostics {
	if strings.TrimSpace(raw) == "" {
		return Diagnostics{Schedule: Schedule{}, Issues: []Issue{}}
	}

	var pending []Issue
	for _, d := range Dialects {
		groups, issues := d.Parse(raw)
		if len(groups) == 0 {
			pending = appendUnique(pending, issues...)
			continue
		}
		s := Schedule(groups)
		issues = append(issues, s.duplicateIssues()...)
		if issues == nil {
			issues = []Issue{}
		}
		return Diagnostics{Schedule: s, Dialect: d.Name, Issues: issues}
	}

	if len(pending) == 0 {
		pending = []Issue{{Segment: strings.TrimSpace(raw), Reason: ReasonUnrecognized}}
	}
	return Diagnostics{Schedule: Schedule{}, Issues: pending}
}

func (s Schedule) duplicateIssues() []Issue {
	var issues []Issue
	dup := s.overlappingDays()
	for i, g := range s {
		days := dup[i]
		if len(days) == 0 {
			continue
		}
		symbols := make([]string, 0, len(days))
		for _, d := range days {
			symbols = append(symbols, d.Symbol())
		}
		issues = append(issues, Issue{
			Segment: FormatGroup(g),
			Reason:  ReasonDuplicateWeekday,
			Detail:  strings.Join(symbols, ","),
		})
	}
	return issues
}

// appendUnique appends issues not already present; several dialects can trip
// over the same text.
func appendUnique(dst []Issue, issues ...Issue) []Issue {
	for _, is := range issues {
		if !slices.Contains(dst, is) {
			dst = append(dst, is)
		}
	}
	return dst
}

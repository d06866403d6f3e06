// Package hours models free-text weekly operating hours: parsing the
// dialects operators write, rendering the canonical form, and deciding
// whether a place is open at a given instant.
package hours

// Group is a run of weekdays sharing the same time ranges and optional break.
type Group struct {
	Days   DayRange    `json:"days"`
	Ranges []TimeRange `json:"ranges"`
	Break  *Break      `json:"break,omitempty"`
}

// Schedule is a place's weekly hours. Empty means no known hours.
type Schedule []Group

// Valid reports whether the group can be rendered and evaluated.
func (g Group) Valid() bool {
	return g.Days.Valid() && len(g.Ranges) > 0
}

// Span returns the window from the first opening to the last closing.
func (g Group) Span() TimeRange {
	if len(g.Ranges) == 0 {
		return TimeRange{}
	}
	return TimeRange{Open: g.Ranges[0].Open, Close: g.Ranges[len(g.Ranges)-1].Close}
}

// GroupFor returns the first group covering d. Groups are expected to be
// disjoint; when they are not, the earliest one wins.
func (s Schedule) GroupFor(d Weekday) (Group, bool) {
	for _, g := range s {
		if g.Valid() && g.Days.Contains(d) {
			return g, true
		}
	}
	return Group{}, false
}

// Covers reports whether any group covers d.
func (s Schedule) Covers(d Weekday) bool {
	_, ok := s.GroupFor(d)
	return ok
}

// Clone returns a deep copy so cached schedules cannot be mutated by callers.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	out := make(Schedule, len(s))
	for i, g := range s {
		out[i] = Group{Days: g.Days, Ranges: append([]TimeRange(nil), g.Ranges...)}
		if g.Break != nil {
			b := *g.Break
			out[i].Break = &b
		}
	}
	return out
}

// overlappingDays lists, per group index, weekdays already claimed by an
// earlier group.
func (s Schedule) overlappingDays() map[int][]Weekday {
	var claimed [daysInWeek]bool
	dup := make(map[int][]Weekday)
	for i, g := range s {
		for _, d := range g.Days.Days() {
			if claimed[d] {
				dup[i] = append(dup[i], d)
				continue
			}
			claimed[d] = true
		}
	}
	return dup
}

// GroupsFromDays builds groups for an arbitrary set of weekdays sharing the
// same hours, one group per contiguous run. Authoring tools that keep days as
// sorted sets use this so a Saturday-to-Monday selection stays "토-월".
func GroupsFromDays(days []Weekday, ranges []TimeRange, brk *Break) ([]Group, error) {
	runs, err := SplitDays(days)
	if err != nil {
		return nil, err
	}
	groups := make([]Group, 0, len(runs))
	for _, r := range runs {
		g := Group{Days: r, Ranges: append([]TimeRange(nil), ranges...)}
		if brk != nil {
			b := *brk
			g.Break = &b
		}
		groups = append(groups, g)
	}
	return groups, nil
}

package hours

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// TimeOfDay is minutes since midnight. 24:00 (1440) is only valid as a
// closing time.
type TimeOfDay int

const endOfDay TimeOfDay = 24 * 60

var ErrInvalidTime = errors.New("invalid time of day")

// timeRangePattern matches one "HH:MM-HH:MM" pair, single-digit hours allowed.
var timeRangePattern = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)

// ParseTimeOfDay parses "9:00" or "09:00".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if minute < 0 || minute > 59 || hour < 0 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// MustTime is ParseTimeOfDay for literals; it panics on bad input.
func MustTime(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Clock builds a TimeOfDay from hour and minute.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// String renders zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// TimeRange is a same-day opening window [Open, Close).
type TimeRange struct {
	Open  TimeOfDay `json:"open"`
	Close TimeOfDay `json:"close"`
}

func (r TimeRange) String() string {
	return r.Open.String() + "-" + r.Close.String()
}

// Contains reports whether t is inside [Open, Close).
func (r TimeRange) Contains(t TimeOfDay) bool {
	return t >= r.Open && t < r.Close
}

// Overnight reports a range whose close is not after its open.
func (r TimeRange) Overnight() bool {
	return r.Close <= r.Open
}

func (r TimeRange) overlaps(o TimeRange) bool {
	return r.Open < o.Close && o.Open < r.Close
}

// Break is a pause inside a group's opening hours.
type Break struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func (b Break) String() string {
	return b.Start.String() + "-" + b.End.String()
}

// Contains reports whether t is inside [Start, End).
func (b Break) Contains(t TimeOfDay) bool {
	return t >= b.Start && t < b.End
}

// rawRange is one matched pair before validation.
type rawRange struct {
	text        string
	open, close string
}

// findTimeRanges returns every "HH:MM-HH:MM" pair in s, in order found.
func findTimeRanges(s string) []rawRange {
	matches := timeRangePattern.FindAllStringSubmatch(s, -1)
	out := make([]rawRange, 0, len(matches))
	for _, m := range matches {
		out = append(out, rawRange{text: m[0], open: m[1], close: m[2]})
	}
	return out
}

// toTimeRange validates one matched pair.
func (r rawRange) toTimeRange() (TimeRange, Reason, bool) {
	open, err := ParseTimeOfDay(r.open)
	if err != nil || open == endOfDay {
		return TimeRange{}, ReasonInvalidTime, false
	}
	closing, err := ParseTimeOfDay(r.close)
	if err != nil {
		return TimeRange{}, ReasonInvalidTime, false
	}
	tr := TimeRange{Open: open, Close: closing}
	if tr.Overnight() {
		return TimeRange{}, ReasonOvernight, false
	}
	return tr, "", true
}

// ExtractTimeRanges scans s for time ranges and returns them in the order
// found, zero-padded. Pairs that are malformed or overnight are skipped.
func ExtractTimeRanges(s string) []TimeRange {
	ranges, _ := extractTimeRanges(s)
	return ranges
}

func extractTimeRanges(s string) ([]TimeRange, []Issue) {
	var (
		ranges []TimeRange
		issues []Issue
	)
	for _, raw := range findTimeRanges(s) {
		tr, reason, ok := raw.toTimeRange()
		if !ok {
			issues = append(issues, Issue{Segment: raw.text, Reason: reason})
			continue
		}
		ranges = append(ranges, tr)
	}
	return ranges, issues
}

// NormalizeRanges sorts by open time and drops ranges overlapping an earlier
// kept one.
func NormalizeRanges(ranges []TimeRange) ([]TimeRange, []Issue) {
	sorted := append([]TimeRange(nil), ranges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Open < sorted[j].Open })

	var (
		kept   []TimeRange
		issues []Issue
	)
	for _, r := range sorted {
		if len(kept) > 0 && kept[len(kept)-1].overlaps(r) {
			issues = append(issues, Issue{Segment: r.String(), Reason: ReasonOverlappingRanges})
			continue
		}
		kept = append(kept, r)
	}
	return kept, issues
}

package hours

import (
	"errors"
	"sort"
	"strings"
)

// Weekday is a day index 0-6 (Sunday-Saturday), same as time.Weekday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

const daysInWeek = 7

// everyDay is the day token meaning all seven weekdays.
const everyDay = "매일"

var weekdaySymbols = [daysInWeek]string{"일", "월", "화", "수", "목", "금", "토"}

var (
	ErrUnknownWeekday = errors.New("unknown weekday")
	ErrNotContiguous  = errors.New("weekdays are not contiguous")
	ErrEmptyDays      = errors.New("no weekdays")
)

// Symbol returns the Korean glyph for the weekday.
func (d Weekday) Symbol() string {
	if !d.Valid() {
		return ""
	}
	return weekdaySymbols[d]
}

func (d Weekday) String() string {
	return d.Symbol()
}

// Valid reports whether d is within 0-6.
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// ParseWeekday maps a single glyph to its index.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for i, sym := range weekdaySymbols {
		if sym == s {
			return Weekday(i), nil
		}
	}
	return 0, ErrUnknownWeekday
}

func containsWeekdaySymbol(s string) bool {
	for _, sym := range weekdaySymbols {
		if strings.Contains(s, sym) {
			return true
		}
	}
	return false
}

// DayRange is a cyclic interval of weekdays: Len consecutive days starting at
// Start, wrapping from Saturday to Sunday. The start is kept as authored so
// "금-월" stays Friday-first.
type DayRange struct {
	Start Weekday `json:"start"`
	Len   int     `json:"len"`
}

// SingleDay returns a one-day range.
func SingleDay(d Weekday) DayRange {
	return DayRange{Start: d, Len: 1}
}

// EveryDay returns the full week starting on Sunday.
func EveryDay() DayRange {
	return DayRange{Start: Sunday, Len: daysInWeek}
}

// Span returns the range from a to b inclusive. When a comes after b the range
// wraps past Saturday: Span(Friday, Monday) is {Fri, Sat, Sun, Mon}.
func Span(a, b Weekday) DayRange {
	n := int(b) - int(a)
	if n < 0 {
		n += daysInWeek
	}
	return DayRange{Start: a, Len: n + 1}
}

// ResolveDayToken expands "월", "금-월" or "매일" into a DayRange.
func ResolveDayToken(token string) (DayRange, error) {
	token = strings.TrimSpace(token)
	if token == everyDay {
		return EveryDay(), nil
	}

	parts := strings.Split(token, "-")
	switch len(parts) {
	case 1:
		d, err := ParseWeekday(parts[0])
		if err != nil {
			return DayRange{}, err
		}
		return SingleDay(d), nil
	case 2:
		a, err := ParseWeekday(parts[0])
		if err != nil {
			return DayRange{}, err
		}
		b, err := ParseWeekday(parts[1])
		if err != nil {
			return DayRange{}, err
		}
		return Span(a, b), nil
	default:
		return DayRange{}, ErrUnknownWeekday
	}
}

// Valid reports whether the range has a valid start and 1-7 days.
func (r DayRange) Valid() bool {
	return r.Start.Valid() && r.Len >= 1 && r.Len <= daysInWeek
}

// End returns the last weekday of the range.
func (r DayRange) End() Weekday {
	return Weekday((int(r.Start) + r.Len - 1) % daysInWeek)
}

// Contains reports whether d falls inside the range.
func (r DayRange) Contains(d Weekday) bool {
	if !r.Valid() || !d.Valid() {
		return false
	}
	offset := (int(d) - int(r.Start) + daysInWeek) % daysInWeek
	return offset < r.Len
}

// Days lists the weekdays in authored order, starting at Start.
func (r DayRange) Days() []Weekday {
	if !r.Valid() {
		return nil
	}
	out := make([]Weekday, 0, r.Len)
	for i := 0; i < r.Len; i++ {
		out = append(out, Weekday((int(r.Start)+i)%daysInWeek))
	}
	return out
}

// Label renders the day token: "월" for one day, otherwise "<first>-<last>".
func (r DayRange) Label() string {
	if r.Len == 1 {
		return r.Start.Symbol()
	}
	return r.Start.Symbol() + "-" + r.End().Symbol()
}

// DayRangeFromSet turns a set of weekdays into a DayRange. A contiguous set has
// exactly one day whose predecessor is missing, and that day becomes the start,
// so {일, 월, 토} yields 토-월 regardless of input order. The full week starts
// on Sunday.
func DayRangeFromSet(days []Weekday) (DayRange, error) {
	present, n, err := weekdayMask(days)
	if err != nil {
		return DayRange{}, err
	}
	if n == daysInWeek {
		return EveryDay(), nil
	}

	starts := 0
	start := Sunday
	for i := 0; i < daysInWeek; i++ {
		prev := (i + daysInWeek - 1) % daysInWeek
		if present[i] && !present[prev] {
			starts++
			start = Weekday(i)
		}
	}
	if starts != 1 {
		return DayRange{}, ErrNotContiguous
	}
	return DayRange{Start: start, Len: n}, nil
}

// SplitDays breaks an arbitrary weekday set into contiguous cyclic runs,
// ordered by the first day of each run.
func SplitDays(days []Weekday) ([]DayRange, error) {
	present, n, err := weekdayMask(days)
	if err != nil {
		return nil, err
	}
	if n == daysInWeek {
		return []DayRange{EveryDay()}, nil
	}

	var runs []DayRange
	for i := 0; i < daysInWeek; i++ {
		prev := (i + daysInWeek - 1) % daysInWeek
		if !present[i] || present[prev] {
			continue
		}
		length := 0
		for present[(i+length)%daysInWeek] {
			length++
		}
		runs = append(runs, DayRange{Start: Weekday(i), Len: length})
	}
	sort.Slice(runs, func(a, b int) bool { return runs[a].Start < runs[b].Start })
	return runs, nil
}

func weekdayMask(days []Weekday) ([daysInWeek]bool, int, error) {
	var present [daysInWeek]bool
	n := 0
	for _, d := range days {
		if !d.Valid() {
			return present, 0, ErrUnknownWeekday
		}
		if !present[d] {
			present[d] = true
			n++
		}
	}
	if n == 0 {
		return present, 0, ErrEmptyDays
	}
	return present, n, nil
}

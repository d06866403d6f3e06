package hours

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// In returns midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

var ErrAmbiguousClosure = errors.New("closure must set exactly one of weekday or date")

// Closure forces a place closed, either every week on Weekday or once on
// Date. Exactly one of the two should be set; an entry with both matches on
// either, an entry with neither never matches.
type Closure struct {
	Weekday *Weekday `json:"weekday,omitempty"`
	Date    *Date    `json:"date,omitempty"`
	Note    string   `json:"note,omitempty"`
}

// WeeklyClosure closes every week on d.
func WeeklyClosure(d Weekday, note string) Closure {
	return Closure{Weekday: &d, Note: note}
}

// DateClosure closes once on date.
func DateClosure(date Date, note string) Closure {
	return Closure{Date: &date, Note: note}
}

// Ambiguous reports an entry with both or neither key set.
func (c Closure) Ambiguous() bool {
	return (c.Weekday == nil) == (c.Date == nil)
}

// Recurring reports a weekly closure.
func (c Closure) Recurring() bool {
	return c.Weekday != nil
}

// Closures is a place's list of closure exceptions.
type Closures []Closure

// Match returns the closure in force at t (already in the evaluation zone).
// One-off dates are checked before weekly closures so a dated note wins.
func (cs Closures) Match(t time.Time) (Closure, bool) {
	today := DateOf(t)
	for _, c := range cs {
		if c.Date != nil && *c.Date == today {
			return c, true
		}
	}
	wd := Weekday(t.Weekday())
	for _, c := range cs {
		if c.Weekday != nil && *c.Weekday == wd {
			return c, true
		}
	}
	return Closure{}, false
}

// Weekly returns only the recurring closures.
func (cs Closures) Weekly() Closures {
	var out Closures
	for _, c := range cs {
		if c.Weekday != nil {
			out = append(out, c)
		}
	}
	return out
}

// OneOff returns only the dated closures.
func (cs Closures) OneOff() Closures {
	var out Closures
	for _, c := range cs {
		if c.Date != nil {
			out = append(out, c)
		}
	}
	return out
}

// Validate reports ambiguous entries and out-of-range weekdays. Evaluation
// does not require a valid list; this is for authoring tools.
func (cs Closures) Validate() error {
	var errs []error
	for i, c := range cs {
		if c.Ambiguous() {
			errs = append(errs, fmt.Errorf("closure[%d]: %w", i, ErrAmbiguousClosure))
		}
		if c.Weekday != nil && !c.Weekday.Valid() {
			errs = append(errs, fmt.Errorf("closure[%d]: %w: %d", i, ErrUnknownWeekday, int(*c.Weekday)))
		}
	}
	return errors.Join(errs...)
}

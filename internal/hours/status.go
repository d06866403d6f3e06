package hours

import "time"

// State is a place's availability at an instant.
type State string

const (
	StateOpen        State = "OPEN"
	StateOnBreak     State = "ON_BREAK"
	StateClosingSoon State = "CLOSING_SOON"
	StateClosed      State = "CLOSED"
	StateUnknown     State = "UNKNOWN"
)

// DefaultClosingSoon is how close to closing a place counts as closing soon.
const DefaultClosingSoon = 30 * time.Minute

// lookahead bounds the search for the next opening.
const lookahead = daysInWeek

// Status is the result of an evaluation. It is never cached: it depends on now.
type Status struct {
	State        State      `json:"state"`
	Note         string     `json:"note,omitempty"`
	NextChangeAt *time.Time `json:"next_change_at,omitempty"`
}

// Evaluator decides availability in one fixed time zone.
type Evaluator struct {
	// Location is the zone wall-clock hours are written in. If nil,
	// time.Local is used.
	Location *time.Location

	// ClosingSoon is the window before a range closes that reports
	// CLOSING_SOON. If zero or negative, DefaultClosingSoon is used.
	ClosingSoon time.Duration
}

// NewEvaluator returns an evaluator for loc with the given closing-soon window.
func NewEvaluator(loc *time.Location, closingSoon time.Duration) Evaluator {
	return Evaluator{Location: loc, ClosingSoon: closingSoon}
}

func (e Evaluator) location() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

func (e Evaluator) threshold() time.Duration {
	if e.ClosingSoon <= 0 {
		return DefaultClosingSoon
	}
	return e.ClosingSoon
}

// Evaluate combines the schedule and closures at now. It never fails: a
// missing or unparsable schedule is UNKNOWN, never CLOSED.
func (e Evaluator) Evaluate(s Schedule, closures Closures, now time.Time) Status {
	local := now.In(e.location())

	if c, ok := closures.Match(local); ok {
		return Status{State: StateClosed, Note: c.Note, NextChangeAt: nextOpening(s, closures, local, false)}
	}

	g, ok := s.GroupFor(Weekday(local.Weekday()))
	if !ok {
		return Status{State: StateUnknown}
	}

	tod := Clock(local.Hour(), local.Minute())

	if g.Break != nil && g.Break.Contains(tod) {
		end := atTime(local, g.Break.End)
		return Status{State: StateOnBreak, NextChangeAt: &end}
	}

	for _, r := range g.Ranges {
		if !r.Contains(tod) {
			continue
		}
		closeAt := atTime(local, r.Close)
		next := closeAt
		if g.Break != nil && g.Break.Start > tod && g.Break.Start < r.Close {
			next = atTime(local, g.Break.Start)
		}
		if closeAt.Sub(local) <= e.threshold() {
			return Status{State: StateClosingSoon, NextChangeAt: &next}
		}
		return Status{State: StateOpen, NextChangeAt: &next}
	}

	return Status{State: StateClosed, NextChangeAt: nextOpening(s, closures, local, true)}
}

// EvaluateText parses text and evaluates it. Convenient for one-off calls;
// hot paths should cache the parsed schedule instead.
func (e Evaluator) EvaluateText(text string, closures Closures, now time.Time) Status {
	return e.Evaluate(Parse(text), closures, now)
}

// nextOpening finds the first range opening after from within a week,
// skipping closed days.
func nextOpening(s Schedule, closures Closures, from time.Time, includeToday bool) *time.Time {
	start := 0
	if !includeToday {
		start = 1
	}
	for i := start; i <= lookahead; i++ {
		day := from.AddDate(0, 0, i)
		if _, closed := closures.Match(day); closed {
			continue
		}
		g, ok := s.GroupFor(Weekday(day.Weekday()))
		if !ok {
			continue
		}
		for _, r := range g.Ranges {
			openAt := atTime(day, r.Open)
			if g.Break != nil && g.Break.Contains(r.Open) {
				openAt = atTime(day, g.Break.End)
			}
			if openAt.After(from) {
				return &openAt
			}
		}
	}
	return nil
}

// atTime returns the wall-clock time t on day's date in day's location.
// 24:00 is the following midnight. Built from wall-clock fields so DST
// transition days keep their local times.
func atTime(day time.Time, t TimeOfDay) time.Time {
	y, m, d := day.Date()
	if t >= endOfDay {
		return time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
	}
	return time.Date(y, m, d, int(t)/60, int(t)%60, 0, 0, day.Location())
}

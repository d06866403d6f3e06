package availability

import (
	"placehours/internal/hours"
	"placehours/internal/model"

	"github.com/rs/zerolog"
)

// ClosuresFromRecords converts stored closure records. Records with an
// out-of-range weekday or a malformed date are skipped; missing data means
// no exceptions.
func ClosuresFromRecords(records []model.ClosedDay, logger *zerolog.Logger) hours.Closures {
	if len(records) == 0 {
		return nil
	}
	out := make(hours.Closures, 0, len(records))
	for _, r := range records {
		c, ok := closureFromRecord(r)
		if !ok {
			if logger != nil {
				logger.Warn().Int64("closed_day_id", r.ID).Int64("place_id", r.PlaceID).Msg("skipping malformed closed day")
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

func closureFromRecord(r model.ClosedDay) (hours.Closure, bool) {
	var c hours.Closure
	if r.Note != nil {
		c.Note = *r.Note
	}
	if r.DayOfWeek != nil {
		d := hours.Weekday(*r.DayOfWeek)
		if !d.Valid() {
			return c, false
		}
		c.Weekday = &d
	}
	if r.SpecificDate != nil && *r.SpecificDate != "" {
		date, err := hours.ParseDate(*r.SpecificDate)
		if err != nil {
			return c, false
		}
		c.Date = &date
	}
	return c, true
}

// RecordFromClosure converts a closure back to its storage shape.
func RecordFromClosure(c hours.Closure) model.ClosedDay {
	var r model.ClosedDay
	if c.Weekday != nil {
		d := int(*c.Weekday)
		r.DayOfWeek = &d
	}
	if c.Date != nil {
		s := c.Date.String()
		r.SpecificDate = &s
	}
	if c.Note != "" {
		note := c.Note
		r.Note = &note
	}
	return r
}

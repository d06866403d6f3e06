// Package availability answers "is this place open now" for listings and
// course cards. It joins stored place records with the hours evaluator.
package availability

import (
	"time"

	"placehours/internal/hours"
	"placehours/internal/metrics"
	"placehours/internal/model"

	"github.com/rs/zerolog"
)

// Parser turns raw hours text into a schedule. *parsecache.Cache satisfies it.
type Parser interface {
	Parse(raw string) hours.Schedule
}

type parserFunc func(string) hours.Schedule

func (f parserFunc) Parse(raw string) hours.Schedule { return f(raw) }

// Service evaluates availability for places and courses.
type Service struct {
	evaluator hours.Evaluator
	parser    Parser
	logger    *zerolog.Logger
}

// NewService creates a service. A nil parser parses on every call.
func NewService(evaluator hours.Evaluator, parser Parser, logger *zerolog.Logger) *Service {
	if parser == nil {
		parser = parserFunc(hours.Parse)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{evaluator: evaluator, parser: parser, logger: logger}
}

// Location returns the zone hours are evaluated in.
func (s *Service) Location() *time.Location {
	if s.evaluator.Location == nil {
		return time.Local
	}
	return s.evaluator.Location
}

// EvaluateStatus evaluates raw hours text with stored closures at now.
// Only the parsed schedule may come from the cache; the status is computed
// fresh on every call.
func (s *Service) EvaluateStatus(openingHours string, closedDays []model.ClosedDay, now time.Time) hours.Status {
	schedule := s.parser.Parse(openingHours)
	closures := ClosuresFromRecords(closedDays, s.logger)
	st := s.evaluator.Evaluate(schedule, closures, now)
	metrics.IncStatus(string(st.State))
	return st
}

// PlaceStatus is a place's availability at one instant.
type PlaceStatus struct {
	PlaceID int64        `json:"place_id"`
	Name    string       `json:"name"`
	Status  hours.Status `json:"status"`
}

// PlaceStatus evaluates a stored place at now.
func (s *Service) PlaceStatus(p *model.Place, now time.Time) PlaceStatus {
	return PlaceStatus{
		PlaceID: p.ID,
		Name:    p.Name,
		Status:  s.EvaluateStatus(p.OpeningHours, p.ClosedDays, now),
	}
}

// CourseSummary is the per-place availability of a course.
type CourseSummary struct {
	CourseID    int64         `json:"course_id"`
	Name        string        `json:"name"`
	At          time.Time     `json:"at"`
	Places      []PlaceStatus `json:"places"`
	ClosedCount int           `json:"closed_count"`
	HasClosed   bool          `json:"has_closed"`
}

// CourseSummary evaluates every place of the course at the same instant.
func (s *Service) CourseSummary(c *model.Course, now time.Time) CourseSummary {
	out := CourseSummary{
		CourseID: c.ID,
		Name:     c.Name,
		At:       now.In(s.Location()),
		Places:   make([]PlaceStatus, 0, len(c.Places)),
	}
	for i := range c.Places {
		ps := s.PlaceStatus(&c.Places[i], now)
		if ps.Status.State == hours.StateClosed {
			out.ClosedCount++
		}
		out.Places = append(out.Places, ps)
	}
	out.HasClosed = out.ClosedCount > 0
	return out
}

// HasClosedPlace reports whether any place of the course is CLOSED at now.
// UNKNOWN places do not count as closed.
func (s *Service) HasClosedPlace(c *model.Course, now time.Time) bool {
	for i := range c.Places {
		p := &c.Places[i]
		if s.EvaluateStatus(p.OpeningHours, p.ClosedDays, now).State == hours.StateClosed {
			return true
		}
	}
	return false
}

// CountClosedPlaces counts the course's places that are CLOSED at now.
func (s *Service) CountClosedPlaces(c *model.Course, now time.Time) int {
	return s.CourseSummary(c, now).ClosedCount
}

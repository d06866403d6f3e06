package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"placehours/internal/availability"
	"placehours/internal/database"
	"placehours/internal/hours"
)

// PlaceResponse is a place with its availability at the requested instant.
type PlaceResponse struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address,omitempty"`
	OpeningHours string       `json:"opening_hours"`
	IsActive     bool         `json:"is_active"`
	Status       hours.Status `json:"status"`
}

// handlePlaces lists places with their current status.
// GET /api/places?active=true&at=RFC3339
func (s *HTTPServer) handlePlaces(w http.ResponseWriter, r *http.Request) {
	now, ok := s.requestTime(w, r)
	if !ok {
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"

	places, err := s.deps.Places.ListPlaces(r.Context(), activeOnly)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("list places failed")
		writeError(w, http.StatusInternalServerError, "failed to list places")
		return
	}

	out := make([]PlaceResponse, 0, len(places))
	for i := range places {
		p := &places[i]
		out = append(out, PlaceResponse{
			ID:           p.ID,
			Name:         p.Name,
			Address:      p.Address,
			OpeningHours: p.OpeningHours,
			IsActive:     p.IsActive,
			Status:       s.deps.Availability.PlaceStatus(p, now).Status,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"at":     now.In(s.deps.Availability.Location()),
		"places": out,
	})
}

// handlePlaceStatus evaluates one place.
// GET /api/places/{id}/status?at=RFC3339
func (s *HTTPServer) handlePlaceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	now, ok := s.requestTime(w, r)
	if !ok {
		return
	}

	p, err := s.deps.Records.GetPlace(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, r, "place", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		availability.PlaceStatus
		At time.Time `json:"at"`
	}{
		PlaceStatus: s.deps.Availability.PlaceStatus(p, now),
		At:          now.In(s.deps.Availability.Location()),
	})
}

// handleCourseStatus evaluates every place of a course at one instant.
// GET /api/courses/{id}/status?at=RFC3339
func (s *HTTPServer) handleCourseStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	now, ok := s.requestTime(w, r)
	if !ok {
		return
	}

	c, err := s.deps.Records.GetCourse(r.Context(), id)
	if err != nil {
		s.writeLookupError(w, r, "course", err)
		return
	}

	writeJSON(w, http.StatusOK, s.deps.Availability.CourseSummary(c, now))
}

func (s *HTTPServer) writeLookupError(w http.ResponseWriter, r *http.Request, kind string, err error) {
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, kind+" not found")
		return
	}
	s.logger.Error().Err(err).Str("request_id", requestIDFrom(r.Context())).Msgf("load %s failed", kind)
	writeError(w, http.StatusInternalServerError, "failed to load "+kind)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// requestTime reads the optional ?at= instant, defaulting to the server clock.
func (s *HTTPServer) requestTime(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return s.deps.Now(), true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid at; expected RFC3339")
		return time.Time{}, false
	}
	return t, true
}

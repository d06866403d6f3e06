package model

import "time"

// Place is a venue with free-text weekly hours as authored by an operator.
type Place struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Address      string      `json:"address,omitempty"`
	OpeningHours string      `json:"opening_hours"`
	ClosedDays   []ClosedDay `json:"closed_days"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ClosedDay is a stored closure exception. Exactly one of DayOfWeek (0-6,
// Sunday first) and SpecificDate ("YYYY-MM-DD") is expected to be set.
type ClosedDay struct {
	ID           int64   `json:"id,omitempty"`
	PlaceID      int64   `json:"place_id,omitempty"`
	DayOfWeek    *int    `json:"day_of_week"`
	SpecificDate *string `json:"specific_date"`
	Note         *string `json:"note"`
}

// Course is an ordered list of places visited together.
type Course struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Places      []Place   `json:"places"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlaceIDs returns the IDs of the course's places in order.
func (c Course) PlaceIDs() []int64 {
	ids := make([]int64, 0, len(c.Places))
	for _, p := range c.Places {
		ids = append(ids, p.ID)
	}
	return ids
}

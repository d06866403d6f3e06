package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"placehours/internal/hours"

	"gopkg.in/yaml.v3"
)

// ClosedDayConfig is one closure exception. Exactly one of DayOfWeek
// (0=일 .. 6=토) and SpecificDate (YYYY-MM-DD) must be set.
type ClosedDayConfig struct {
	DayOfWeek    *int   `yaml:"day_of_week,omitempty"`
	SpecificDate string `yaml:"specific_date,omitempty"`
	Note         string `yaml:"note,omitempty"`
}

// PlaceConfig represents a single place in places.yaml.
type PlaceConfig struct {
	Name         string            `yaml:"name"`
	Address      string            `yaml:"address"`
	OpeningHours string            `yaml:"opening_hours"` // "월-금: 09:00-18:00; 토: 10:00-14:00"
	IsActive     *bool             `yaml:"is_active,omitempty"`
	ClosedDays   []ClosedDayConfig `yaml:"closed_days"`
}

// Active reports whether the place is active; unset means active.
func (p PlaceConfig) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

// CourseConfig is an ordered list of place names.
type CourseConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Places      []string `yaml:"places"`
}

// HolidayConfig closes every place on a date.
type HolidayConfig struct {
	Date string `yaml:"date"` // "2026-01-01"
	Name string `yaml:"name"` // "신정"
}

// Catalog is the root configuration for places.yaml.
type Catalog struct {
	Places   []PlaceConfig   `yaml:"places"`
	Courses  []CourseConfig  `yaml:"courses"`
	Holidays []HolidayConfig `yaml:"holidays"`
}

// LoadCatalog loads and validates the seed catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		path = "configs/places.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}

	return &cat, nil
}

// Validate checks the catalog for errors. Opening hours are not validated:
// unparseable text is stored as written and lints with warnings.
func (c *Catalog) Validate() error {
	if len(c.Places) == 0 {
		return errors.New("no places defined")
	}

	names := make(map[string]bool)
	for i, p := range c.Places {
		if p.Name == "" {
			return fmt.Errorf("place[%d]: name is required", i)
		}
		if names[p.Name] {
			return fmt.Errorf("place[%d]: duplicate name '%s'", i, p.Name)
		}
		names[p.Name] = true

		for j, cd := range p.ClosedDays {
			if err := cd.validate(); err != nil {
				return fmt.Errorf("place[%d].closed_days[%d]: %w", i, j, err)
			}
		}
	}

	courses := make(map[string]bool)
	for i, course := range c.Courses {
		if course.Name == "" {
			return fmt.Errorf("course[%d]: name is required", i)
		}
		if courses[course.Name] {
			return fmt.Errorf("course[%d]: duplicate name '%s'", i, course.Name)
		}
		courses[course.Name] = true

		for j, name := range course.Places {
			if !names[name] {
				return fmt.Errorf("course[%d].places[%d]: unknown place '%s'", i, j, name)
			}
		}
	}

	for i, h := range c.Holidays {
		if h.Date == "" {
			return fmt.Errorf("holiday[%d]: date is required", i)
		}
		if _, err := hours.ParseDate(h.Date); err != nil {
			return fmt.Errorf("holiday[%d]: invalid date format '%s', expected YYYY-MM-DD", i, h.Date)
		}
	}

	return nil
}

func (cd ClosedDayConfig) validate() error {
	hasDay := cd.DayOfWeek != nil
	hasDate := cd.SpecificDate != ""
	if hasDay == hasDate {
		return hours.ErrAmbiguousClosure
	}
	if hasDay && !hours.Weekday(*cd.DayOfWeek).Valid() {
		return fmt.Errorf("invalid day_of_week %d, must be 0-6 (0=일)", *cd.DayOfWeek)
	}
	if hasDate {
		if _, err := hours.ParseDate(cd.SpecificDate); err != nil {
			return fmt.Errorf("invalid specific_date '%s', expected YYYY-MM-DD", cd.SpecificDate)
		}
	}
	return nil
}

// Closure converts a validated entry to its hours form.
func (cd ClosedDayConfig) Closure() hours.Closure {
	c := hours.Closure{Note: cd.Note}
	if cd.DayOfWeek != nil {
		d := hours.Weekday(*cd.DayOfWeek)
		c.Weekday = &d
	}
	if cd.SpecificDate != "" {
		if date, err := hours.ParseDate(cd.SpecificDate); err == nil {
			c.Date = &date
		}
	}
	return c
}

// GetPlaceByName returns place config by name.
func (c *Catalog) GetPlaceByName(name string) *PlaceConfig {
	for i := range c.Places {
		if c.Places[i].Name == name {
			return &c.Places[i]
		}
	}
	return nil
}

// IsHoliday checks if a date is a holiday.
func (c *Catalog) IsHoliday(date time.Time) (bool, string) {
	dateStr := date.Format("2006-01-02")
	for _, h := range c.Holidays {
		if h.Date == dateStr {
			return true, h.Name
		}
	}
	return false, ""
}

// String returns a summary of the catalog.
func (c *Catalog) String() string {
	active := 0
	for _, p := range c.Places {
		if p.Active() {
			active++
		}
	}
	return fmt.Sprintf("Catalog: %d places (%d active), %d courses, %d holidays",
		len(c.Places), active, len(c.Courses), len(c.Holidays))
}

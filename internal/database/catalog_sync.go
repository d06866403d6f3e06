package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"placehours/internal/config"
	"placehours/internal/hours"
	"placehours/internal/metrics"
	"placehours/internal/model"
)

// SyncResult summarizes one catalog application.
type SyncResult struct {
	Places      int `json:"places"`
	Deactivated int `json:"deactivated"`
	Courses     int `json:"courses"`
	LintIssues  int `json:"lint_issues"`
}

// SyncCatalog applies places.yaml to the database in one transaction.
// It upserts places and courses by name, replaces each place's closed days
// with the catalog's plus one date closure per holiday, and marks places
// missing from the catalog inactive. Hours text is stored verbatim; lint
// issues are logged, never rejected.
func (db *DB) SyncCatalog(ctx context.Context, cat *config.Catalog) (SyncResult, error) {
	var result SyncResult
	if cat == nil {
		return result, fmt.Errorf("catalog is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	ids := make(map[string]int64, len(cat.Places))

	for _, p := range cat.Places {
		// Preserve created_at if the place already exists.
		_, err := tx.ExecContext(ctx, `
			INSERT INTO places (name, address, opening_hours, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				address = excluded.address,
				opening_hours = excluded.opening_hours,
				is_active = excluded.is_active,
				updated_at = excluded.updated_at`,
			p.Name, p.Address, p.OpeningHours, p.Active(), now, now,
		)
		if err != nil {
			return result, fmt.Errorf("sync place %q: %w", p.Name, err)
		}

		var id int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM places WHERE name = ?`, p.Name).Scan(&id); err != nil {
			return result, fmt.Errorf("lookup place %q: %w", p.Name, err)
		}
		ids[p.Name] = id

		if err := replaceClosedDays(ctx, tx, id, catalogClosedDays(p, cat.Holidays)); err != nil {
			return result, err
		}
		result.LintIssues += db.lintPlace(p)
		result.Places++
	}

	deactivated, err := deactivateMissing(ctx, tx, ids, now)
	if err != nil {
		return result, err
	}
	result.Deactivated = deactivated

	for _, c := range cat.Courses {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO courses (name, description, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				description = excluded.description,
				updated_at = excluded.updated_at`,
			c.Name, c.Description, now, now,
		)
		if err != nil {
			return result, fmt.Errorf("sync course %q: %w", c.Name, err)
		}

		var courseID int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM courses WHERE name = ?`, c.Name).Scan(&courseID); err != nil {
			return result, fmt.Errorf("lookup course %q: %w", c.Name, err)
		}

		placeIDs := make([]int64, 0, len(c.Places))
		for _, name := range c.Places {
			placeIDs = append(placeIDs, ids[name])
		}
		if err := setCoursePlaces(ctx, tx, courseID, placeIDs); err != nil {
			return result, err
		}
		result.Courses++
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit: %w", err)
	}

	db.logger.Info().
		Int("places", result.Places).
		Int("deactivated", result.Deactivated).
		Int("courses", result.Courses).
		Int("lint_issues", result.LintIssues).
		Msg("catalog applied")
	return result, nil
}

func deactivateMissing(ctx context.Context, tx *sql.Tx, keep map[string]int64, now time.Time) (int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM places WHERE is_active = 1`)
	if err != nil {
		return 0, fmt.Errorf("list active places: %w", err)
	}
	var stale []int64
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return 0, err
		}
		if _, ok := keep[name]; !ok {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, `UPDATE places SET is_active = 0, updated_at = ? WHERE id = ?`, now, id); err != nil {
			return 0, fmt.Errorf("deactivate place %d: %w", id, err)
		}
	}
	return len(stale), nil
}

func catalogClosedDays(p config.PlaceConfig, holidays []config.HolidayConfig) []model.ClosedDay {
	days := make([]model.ClosedDay, 0, len(p.ClosedDays)+len(holidays))
	for _, cd := range p.ClosedDays {
		d := model.ClosedDay{DayOfWeek: cd.DayOfWeek}
		if cd.SpecificDate != "" {
			date := cd.SpecificDate
			d.SpecificDate = &date
		}
		if cd.Note != "" {
			note := cd.Note
			d.Note = &note
		}
		days = append(days, d)
	}
	for _, h := range holidays {
		date, name := h.Date, h.Name
		d := model.ClosedDay{SpecificDate: &date}
		if name != "" {
			d.Note = &name
		}
		days = append(days, d)
	}
	return days
}

func (db *DB) lintPlace(p config.PlaceConfig) int {
	if p.OpeningHours == "" {
		return 0
	}
	diag := hours.Diagnose(p.OpeningHours)
	for _, issue := range diag.Issues {
		metrics.IncLintIssue(string(issue.Reason))
		db.logger.Warn().
			Str("place", p.Name).
			Str("segment", issue.Segment).
			Str("reason", string(issue.Reason)).
			Str("detail", issue.Detail).
			Msg("opening hours lint")
	}
	return len(diag.Issues)
}

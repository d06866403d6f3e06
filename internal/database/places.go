package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"placehours/internal/model"
)

const placeColumns = `id, name, address, opening_hours, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlace(row rowScanner) (model.Place, error) {
	var p model.Place
	err := row.Scan(&p.ID, &p.Name, &p.Address, &p.OpeningHours, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListPlaces returns places ordered by name, with their closed days.
func (db *DB) ListPlaces(ctx context.Context, activeOnly bool) ([]model.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	places := make([]model.Place, 0)
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.attachClosedDays(ctx, places); err != nil {
		return nil, err
	}
	return places, nil
}

// GetPlace returns a place with its closed days, or ErrNotFound.
func (db *DB) GetPlace(ctx context.Context, id int64) (*model.Place, error) {
	row := db.QueryRowContext(ctx, `SELECT `+placeColumns+` FROM places WHERE id = ?`, id)
	return db.loadPlace(ctx, row, fmt.Sprintf("place %d", id))
}

// GetPlaceByName returns a place by its unique name, or ErrNotFound.
func (db *DB) GetPlaceByName(ctx context.Context, name string) (*model.Place, error) {
	row := db.QueryRowContext(ctx, `SELECT `+placeColumns+` FROM places WHERE name = ?`, name)
	return db.loadPlace(ctx, row, fmt.Sprintf("place %q", name))
}

func (db *DB) loadPlace(ctx context.Context, row *sql.Row, label string) (*model.Place, error) {
	p, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", label, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", label, err)
	}
	places := []model.Place{p}
	if err := db.attachClosedDays(ctx, places); err != nil {
		return nil, err
	}
	return &places[0], nil
}

// CreatePlace inserts a place and its closed days, filling in ID and timestamps.
func (db *DB) CreatePlace(ctx context.Context, p *model.Place) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO places (name, address, opening_hours, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Name, p.Address, p.OpeningHours, p.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert place %q: %w", p.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	if err := replaceClosedDays(ctx, tx, id, p.ClosedDays); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	for i := range p.ClosedDays {
		p.ClosedDays[i].PlaceID = id
	}
	return nil
}

// UpdatePlace rewrites a place's fields and replaces its closed days.
func (db *DB) UpdatePlace(ctx context.Context, p *model.Place) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE places SET name = ?, address = ?, opening_hours = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Address, p.OpeningHours, p.IsActive, now, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update place %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("place %d: %w", p.ID, ErrNotFound)
	}

	if err := replaceClosedDays(ctx, tx, p.ID, p.ClosedDays); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

// DeletePlace removes a place; its closed days and course slots cascade.
func (db *DB) DeletePlace(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM places WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete place %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("place %d: %w", id, ErrNotFound)
	}
	return nil
}

func replaceClosedDays(ctx context.Context, tx *sql.Tx, placeID int64, days []model.ClosedDay) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM closed_days WHERE place_id = ?`, placeID); err != nil {
		return fmt.Errorf("clear closed days for place %d: %w", placeID, err)
	}
	for i, d := range days {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO closed_days (place_id, day_of_week, specific_date, note) VALUES (?, ?, ?, ?)`,
			placeID, d.DayOfWeek, d.SpecificDate, d.Note,
		)
		if err != nil {
			return fmt.Errorf("insert closed day for place %d: %w", placeID, err)
		}
		if id, err := res.LastInsertId(); err == nil {
			days[i].ID = id
		}
	}
	return nil
}

// attachClosedDays loads closed days for all places in one query.
func (db *DB) attachClosedDays(ctx context.Context, places []model.Place) error {
	if len(places) == 0 {
		return nil
	}

	// a course may list the same place twice
	index := make(map[int64][]int, len(places))
	args := make([]any, 0, len(places))
	for i := range places {
		id := places[i].ID
		if _, seen := index[id]; !seen {
			args = append(args, id)
		}
		index[id] = append(index[id], i)
		places[i].ClosedDays = []model.ClosedDay{}
	}

	query := `SELECT id, place_id, day_of_week, specific_date, note FROM closed_days
		WHERE place_id IN (` + placeholders(len(args)) + `) ORDER BY id`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load closed days: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d    model.ClosedDay
			dow  sql.NullInt64
			date sql.NullString
			note sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.PlaceID, &dow, &date, &note); err != nil {
			return fmt.Errorf("scan closed day: %w", err)
		}
		if dow.Valid {
			v := int(dow.Int64)
			d.DayOfWeek = &v
		}
		if date.Valid {
			d.SpecificDate = &date.String
		}
		if note.Valid {
			d.Note = &note.String
		}
		for _, i := range index[d.PlaceID] {
			places[i].ClosedDays = append(places[i].ClosedDays, d)
		}
	}
	return rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

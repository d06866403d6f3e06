package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"placehours/internal/model"
)

// GetCourse returns a course with its places in visiting order.
func (db *DB) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	var c model.Course
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM courses WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course %d: %w", id, err)
	}

	places, err := db.coursePlaces(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Places = places
	return &c, nil
}

// ListCourses returns all courses ordered by name, without places.
func (db *DB) ListCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM courses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]model.Course, 0)
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		c.Places = []model.Place{}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (db *DB) coursePlaces(ctx context.Context, courseID int64) ([]model.Place, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.name, p.address, p.opening_hours, p.is_active, p.created_at, p.updated_at
		FROM course_places cp JOIN places p ON p.id = cp.place_id
		WHERE cp.course_id = ?
		ORDER BY cp.position`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list course %d places: %w", courseID, err)
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

// CreateCourse inserts a course visiting placeIDs in order.
func (db *DB) CreateCourse(ctx context.Context, name, description string, placeIDs []int64) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO courses (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, description, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert course %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := setCoursePlaces(ctx, tx, id, placeIDs); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// CoursesWithPlace returns IDs of courses that include the place.
func (db *DB) CoursesWithPlace(ctx context.Context, placeID int64) ([]int64, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT course_id FROM course_places WHERE place_id = ? ORDER BY course_id`, placeID)
	if err != nil {
		return nil, fmt.Errorf("courses with place %d: %w", placeID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func setCoursePlaces(ctx context.Context, tx *sql.Tx, courseID int64, placeIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM course_places WHERE course_id = ?`, courseID); err != nil {
		return fmt.Errorf("clear course %d places: %w", courseID, err)
	}
	for pos, placeID := range placeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO course_places (course_id, place_id, position) VALUES (?, ?, ?)`,
			courseID, placeID, pos,
		); err != nil {
			return fmt.Errorf("add place %d to course %d: %w", placeID, courseID, err)
		}
	}
	return nil
}

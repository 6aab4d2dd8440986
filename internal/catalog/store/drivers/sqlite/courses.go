package sqlite

import (
	"context"
	"database/sql/driver"
	"strings"
	"time"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store"

	msqlite "modernc.org/sqlite"
)

func init() {
	msqlite.MustRegisterDeterministicScalarFunction("casefold", 1, casefold)
}

// casefold lower-cases text with Unicode rules. NULL stays NULL.
func casefold(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

type coursesRepo struct {
	q dbtx
}

// Reads always inner join users so a course whose owner vanished is skipped.
const courseSelect = `
	SELECT c.id, c.title, c.description, c.instructor_id, u.name, c.created_at, c.updated_at
	FROM courses c
	JOIN users u ON u.id = c.instructor_id`

func (r *coursesRepo) CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	now := dbTime(time.Now())
	c.CreatedAt, c.UpdatedAt = now, now

	err := r.q.QueryRowContext(ctx,
		`INSERT INTO courses (title, description, instructor_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`,
		c.Title, c.Description, c.InstructorID, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return domain.Course{}, err
	}
	return c, nil
}

func (r *coursesRepo) GetCourseByID(ctx context.Context, id int64) (domain.Course, error) {
	row := r.q.QueryRowContext(ctx, courseSelect+` WHERE c.id = ?`, id)

	c, err := scanCourse(row)
	if err != nil {
		return domain.Course{}, mapNotFound(err)
	}
	return c, nil
}

func (r *coursesRepo) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return r.list(ctx, courseSelect+` ORDER BY c.id`)
}

func (r *coursesRepo) ListCoursesByInstructor(ctx context.Context, instructorID int64) ([]domain.Course, error) {
	return r.list(ctx, courseSelect+` WHERE c.instructor_id = ? ORDER BY c.id`, instructorID)
}

func (r *coursesRepo) SearchCourses(ctx context.Context, term string) ([]domain.Course, error) {
	pattern := strings.ToLower(store.LikePattern(term))
	// Built-in LIKE only folds ASCII, so both sides go through casefold.
	return r.list(ctx,
		courseSelect+` WHERE casefold(c.title) LIKE ? ESCAPE '\' OR casefold(u.name) LIKE ? ESCAPE '\' ORDER BY c.id`,
		pattern, pattern,
	)
}

func (r *coursesRepo) UpdateCourse(ctx context.Context, id int64, title, description string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE courses SET title = ?, description = ?, updated_at = ? WHERE id = ?`,
		title, description, dbTime(time.Now()), id,
	)
	if err != nil {
		return err
	}
	return mapAffected(res)
}

func (r *coursesRepo) DeleteCourse(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mapAffected(res)
}

func (r *coursesRepo) list(ctx context.Context, query string, args ...any) ([]domain.Course, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]domain.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func scanCourse(row rowScanner) (domain.Course, error) {
	var c domain.Course
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.InstructorName, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

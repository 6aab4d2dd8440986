package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
)

type coursesRepo struct {
	q dbtx
}

const courseSelect = `
	SELECT c.id, c.title, c.description, c.instructor_id, u.name, c.created_at, c.updated_at
	FROM courses c
	JOIN users u ON u.id = c.instructor_id`

func (r *coursesRepo) CreateCourse(ctx context.Context, c domain.Course) (domain.Course, error) {
	now := dbTime(time.Now())
	c.CreatedAt, c.UpdatedAt = now, now

	err := r.q.QueryRowContext(ctx,
		`INSERT INTO courses (title, description, instructor_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		c.Title, c.Description, c.InstructorID, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return domain.Course{}, err
	}
	return c, nil
}

func (r *coursesRepo) GetCourseByID(ctx context.Context, id int64) (domain.Course, error) {
	var c domain.Course
	err := r.q.QueryRowContext(ctx, courseSelect+` WHERE c.id = $1`, id).
		Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.InstructorName, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Course{}, mapNotFound(err)
	}
	return c, nil
}

func (r *coursesRepo) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return r.list(ctx, courseSelect+` ORDER BY c.id`)
}

func (r *coursesRepo) ListCoursesByInstructor(ctx context.Context, instructorID int64) ([]domain.Course, error) {
	return r.list(ctx, courseSelect+` WHERE c.instructor_id = $1 ORDER BY c.id`, instructorID)
}

func (r *coursesRepo) SearchCourses(ctx context.Context, term string) ([]domain.Course, error) {
	return r.list(ctx,
		courseSelect+` WHERE c.title ILIKE $1 ESCAPE '\' OR u.name ILIKE $1 ESCAPE '\' ORDER BY c.id`,
		store.LikePattern(term),
	)
}

func (r *coursesRepo) UpdateCourse(ctx context.Context, id int64, title, description string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE courses SET title = $1, description = $2, updated_at = $3 WHERE id = $4`,
		title, description, dbTime(time.Now()), id,
	)
	if err != nil {
		return err
	}
	return mapAffected(res)
}

func (r *coursesRepo) DeleteCourse(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
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
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.InstructorID, &c.InstructorName, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

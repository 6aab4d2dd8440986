package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
)

type CourseService struct {
	Store store.Store
}

func (s *CourseService) ListAll(ctx context.Context) ([]domain.Course, error) {
	courses, err := s.Store.Courses().ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *CourseService) ListByInstructor(ctx context.Context, instructorID int64) ([]domain.Course, error) {
	courses, err := s.Store.Courses().ListCoursesByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list instructor courses: %w", err)
	}
	return courses, nil
}

func (s *CourseService) GetByID(ctx context.Context, id int64) (domain.Course, error) {
	c, err := s.Store.Courses().GetCourseByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Course{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Course{}, fmt.Errorf("get course: %w", err)
	}
	return c, nil
}

// Create adds a course owned by the calling instructor.
func (s *CourseService) Create(ctx context.Context, caller domain.Principal, title, description string) (domain.Course, error) {
	if caller.Role != domain.RoleInstructor {
		return domain.Course{}, domain.ErrForbidden
	}

	title, description, err := validateCourse(title, description)
	if err != nil {
		return domain.Course{}, err
	}

	c, err := s.Store.Courses().CreateCourse(ctx, domain.Course{
		Title:        title,
		Description:  description,
		InstructorID: caller.UserID,
	})
	if err != nil {
		return domain.Course{}, fmt.Errorf("create course: %w", err)
	}

	slogx.FromContext(ctx).Info("course created",
		slog.Int64("course_id", c.ID),
		slog.Int64("instructor_id", caller.UserID),
	)
	return c, nil
}

// Update fetches first, then checks ownership, then validates.
func (s *CourseService) Update(ctx context.Context, caller domain.Principal, id int64, title, description string) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}

	title, description, err := validateCourse(title, description)
	if err != nil {
		return err
	}

	err = s.Store.Courses().UpdateCourse(ctx, id, title, description)
	if errors.Is(err, store.ErrNotFound) {
		// deleted between fetch and write
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	slogx.FromContext(ctx).Info("course updated", slog.Int64("course_id", id))
	return nil
}

// Delete removes only the course row.
func (s *CourseService) Delete(ctx context.Context, caller domain.Principal, id int64) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}

	err := s.Store.Courses().DeleteCourse(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	slogx.FromContext(ctx).Info("course deleted", slog.Int64("course_id", id))
	return nil
}

// Search matches term against title or instructor name. A blank term lists
// everything.
func (s *CourseService) Search(ctx context.Context, term string) ([]domain.Course, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListAll(ctx)
	}

	courses, err := s.Store.Courses().SearchCourses(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	return courses, nil
}

// owned loads the course and checks the caller owns it.
func (s *CourseService) owned(ctx context.Context, caller domain.Principal, id int64) (domain.Course, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Course{}, err
	}
	if err := RequireOwnership(c, caller); err != nil {
		return domain.Course{}, err
	}
	return c, nil
}

// RequireOwnership passes only when caller is the course's instructor.
func RequireOwnership(c domain.Course, caller domain.Principal) error {
	if caller.Role != domain.RoleInstructor || !c.OwnedBy(caller.UserID) {
		return domain.ErrForbidden
	}
	return nil
}

func validateCourse(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	fields := map[string]string{}
	if title == "" {
		fields["title"] = MsgTitleRequired
	}
	if description == "" {
		fields["description"] = MsgDescRequired
	}
	return title, description, domain.Validation(fields)
}

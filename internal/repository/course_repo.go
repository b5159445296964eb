package repository

import (
	"context"
	"database/sql"
	"errors"

	"learnhub/internal/models"
)

// ErrCourseNotFound is returned when no visible course matches the lookup.
var ErrCourseNotFound = errors.New("repository: course not found")

// CourseRepository reads the course content tree.
type CourseRepository struct {
	db *sql.DB
}

// NewCourseRepository returns repository.
func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// GetByID fetches a published, non-deleted course.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	const query = `
		SELECT id, slug, title, price_amount, is_published, created_at
		FROM courses
		WHERE id = $1 AND is_published = TRUE AND deleted_at IS NULL
	`
	var course models.Course
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Slug,
		&course.Title,
		&course.PriceAmount,
		&course.IsPublished,
		&course.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// LessonInCourse reports whether the lesson belongs to a section under the
// given course. Guards against lesson ids smuggled in from another course.
func (r *CourseRepository) LessonInCourse(ctx context.Context, lessonID, courseID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM section_contents sc
			JOIN sections s ON s.id = sc.section_id
			WHERE sc.id = $1 AND s.course_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, lessonID, courseID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CountLessons returns the live number of lessons under the course.
func (r *CourseRepository) CountLessons(ctx context.Context, courseID int64) (int, error) {
	const query = `
		SELECT COUNT(sc.id)
		FROM section_contents sc
		JOIN sections s ON s.id = sc.section_id
		WHERE s.course_id = $1
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, courseID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// IsMentor reports whether the user is registered as a mentor of the course.
func (r *CourseRepository) IsMentor(ctx context.Context, userID, courseID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM course_mentors
			WHERE user_id = $1 AND course_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

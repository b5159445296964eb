package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"learnhub/internal/models"
)

// ErrProgressNotFound is returned when no progress row exists for the pair.
var ErrProgressNotFound = errors.New("repository: progress not found")

// ProgressRepository persists per (user, lesson) completion facts. All writes
// are single-row upserts keyed on the unique (user_id, section_content_id)
// index, so no cross-record locking is ever needed.
type ProgressRepository struct {
	db *sql.DB
}

// NewProgressRepository returns repository.
func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// UpsertCompletion marks the lesson completed. The first completion timestamp
// wins on repeat calls; time spent never decreases.
func (r *ProgressRepository) UpsertCompletion(ctx context.Context, userID, courseID, lessonID int64, timeSpent int, completedAt time.Time) (*models.LessonProgress, error) {
	const query = `
		INSERT INTO lesson_progress
			(user_id, course_id, section_content_id, is_completed, completed_at, time_spent_seconds, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $5, NOW())
		ON CONFLICT (user_id, section_content_id) DO UPDATE SET
			is_completed = TRUE,
			completed_at = COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at),
			time_spent_seconds = GREATEST(lesson_progress.time_spent_seconds, EXCLUDED.time_spent_seconds),
			updated_at = NOW()
		RETURNING id, user_id, course_id, section_content_id, is_completed,
		          completed_at, time_spent_seconds, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, courseID, lessonID, completedAt, timeSpent))
}

// UpsertTimeSpent records time spent without touching completion state.
func (r *ProgressRepository) UpsertTimeSpent(ctx context.Context, userID, courseID, lessonID int64, timeSpent int) (*models.LessonProgress, error) {
	const query = `
		INSERT INTO lesson_progress
			(user_id, course_id, section_content_id, is_completed, time_spent_seconds, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, NOW())
		ON CONFLICT (user_id, section_content_id) DO UPDATE SET
			time_spent_seconds = GREATEST(lesson_progress.time_spent_seconds, EXCLUDED.time_spent_seconds),
			updated_at = NOW()
		RETURNING id, user_id, course_id, section_content_id, is_completed,
		          completed_at, time_spent_seconds, updated_at
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, courseID, lessonID, timeSpent))
}

// Get fetches the progress row for (user, lesson).
func (r *ProgressRepository) Get(ctx context.Context, userID, lessonID int64) (*models.LessonProgress, error) {
	const query = `
		SELECT id, user_id, course_id, section_content_id, is_completed,
		       completed_at, time_spent_seconds, updated_at
		FROM lesson_progress
		WHERE user_id = $1 AND section_content_id = $2
	`
	rec, err := r.scanOne(r.db.QueryRowContext(ctx, query, userID, lessonID))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CountCompleted returns how many lessons of the course the user completed.
func (r *ProgressRepository) CountCompleted(ctx context.Context, userID, courseID int64) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM lesson_progress
		WHERE user_id = $1 AND course_id = $2 AND is_completed = TRUE
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProgressRepository) scanOne(row *sql.Row) (*models.LessonProgress, error) {
	var rec models.LessonProgress
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.CourseID,
		&rec.SectionContentID,
		&rec.IsCompleted,
		&rec.CompletedAt,
		&rec.TimeSpentSeconds,
		&rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

package models

import "time"

// MaxTimeSpentPerUpdate caps a single time-spent report, in seconds.
const MaxTimeSpentPerUpdate = 3600

// LessonProgress is the per (user, lesson) completion fact. One row per pair,
// upserted. CompletedAt keeps the first completion timestamp across repeated
// mark-complete calls; TimeSpentSeconds never decreases.
type LessonProgress struct {
	ID               int64      `db:"id" json:"id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	CourseID         int64      `db:"course_id" json:"course_id"`
	SectionContentID int64      `db:"section_content_id" json:"section_content_id"`
	IsCompleted      bool       `db:"is_completed" json:"is_completed"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	TimeSpentSeconds int        `db:"time_spent_seconds" json:"time_spent_seconds"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// CourseProgress is the rollup for one (user, course) pair. TotalLessons is
// the live lesson count at call time, not a snapshot taken at enrollment.
type CourseProgress struct {
	CompletedCount int `json:"completed_count"`
	TotalLessons   int `json:"total_lessons"`
	Percent        int `json:"percent"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"learnhub/internal/domain"
	"learnhub/internal/models"
	"learnhub/internal/repository"
)

// AccessChecker gates every progress operation on course entitlement.
type AccessChecker interface {
	CanAccess(ctx context.Context, userID, courseID int64) (bool, error)
}

// ProgressCourseRepository defines course-tree lookups used for
// cross-reference checks and the live lesson denominator.
type ProgressCourseRepository interface {
	LessonInCourse(ctx context.Context, lessonID, courseID int64) (bool, error)
	CountLessons(ctx context.Context, courseID int64) (int, error)
}

// ProgressStore defines the per (user, lesson) persistence contract.
type ProgressStore interface {
	UpsertCompletion(ctx context.Context, userID, courseID, lessonID int64, timeSpent int, completedAt time.Time) (*models.LessonProgress, error)
	UpsertTimeSpent(ctx context.Context, userID, courseID, lessonID int64, timeSpent int) (*models.LessonProgress, error)
	Get(ctx context.Context, userID, lessonID int64) (*models.LessonProgress, error)
	CountCompleted(ctx context.Context, userID, courseID int64) (int, error)
}

// ProgressService records lesson completion and rolls it up per course.
type ProgressService struct {
	access  AccessChecker
	courses ProgressCourseRepository
	store   ProgressStore
	logger  *zap.Logger
}

// NewProgressService builds service.
func NewProgressService(access AccessChecker, courses ProgressCourseRepository, store ProgressStore, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		access:  access,
		courses: courses,
		store:   store,
		logger:  logger,
	}
}

// MarkCompleted upserts the completion fact for (user, lesson). Repeat calls
// keep the first completion timestamp. Time spent is clamped to
// [0, MaxTimeSpentPerUpdate] rather than rejected, since completion is the
// point of the call.
func (s *ProgressService) MarkCompleted(ctx context.Context, userID, courseID, lessonID int64, timeSpent int) (*models.LessonProgress, error) {
	if err := s.authorize(ctx, userID, courseID, lessonID); err != nil {
		return nil, err
	}

	if timeSpent < 0 {
		timeSpent = 0
	}
	if timeSpent > models.MaxTimeSpentPerUpdate {
		timeSpent = models.MaxTimeSpentPerUpdate
	}

	rec, err := s.store.UpsertCompletion(ctx, userID, courseID, lessonID, timeSpent, timeNow().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info("lesson completed",
		zap.Int64("user_id", userID),
		zap.Int64("course_id", courseID),
		zap.Int64("lesson_id", lessonID),
	)
	return rec, nil
}

// UpdateTimeSpent records time spent on a lesson independent of completion.
// Input outside [1, MaxTimeSpentPerUpdate] is rejected.
func (s *ProgressService) UpdateTimeSpent(ctx context.Context, userID, courseID, lessonID int64, timeSpent int) (*models.LessonProgress, error) {
	if timeSpent < 1 || timeSpent > models.MaxTimeSpentPerUpdate {
		return nil, fmt.Errorf("progress: time spent %d outside [1, %d]: %w", timeSpent, models.MaxTimeSpentPerUpdate, domain.ErrValidation)
	}

	if err := s.authorize(ctx, userID, courseID, lessonID); err != nil {
		return nil, err
	}

	return s.store.UpsertTimeSpent(ctx, userID, courseID, lessonID, timeSpent)
}

// GetStatus returns the progress row for (user, lesson), or a zero-valued
// "not started" record when none exists yet.
func (s *ProgressService) GetStatus(ctx context.Context, userID, courseID, lessonID int64) (*models.LessonProgress, error) {
	if err := s.authorize(ctx, userID, courseID, lessonID); err != nil {
		return nil, err
	}

	rec, err := s.store.Get(ctx, userID, lessonID)
	if errors.Is(err, repository.ErrProgressNotFound) {
		return &models.LessonProgress{
			UserID:           userID,
			CourseID:         courseID,
			SectionContentID: lessonID,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// CourseProgress rolls completed lessons up against the live lesson count.
// The denominator is recomputed on every call: adding lessons lowers the
// percentage, removing them raises it. Nothing is snapshotted at enrollment.
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID int64) (*models.CourseProgress, error) {
	if err := s.authorizeCourse(ctx, userID, courseID); err != nil {
		return nil, err
	}

	total, err := s.courses.CountLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := s.store.CountCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(completed) / float64(total) * 100))
	}

	return &models.CourseProgress{
		CompletedCount: completed,
		TotalLessons:   total,
		Percent:        percent,
	}, nil
}

// authorize gates on course access first, then cross-checks that the lesson
// actually lives under the course. Unauthorized callers get a uniform
// access-denied for missing and forbidden content alike, so a denial never
// confirms that a lesson exists; the cross-reference mismatch is only
// reported to callers who already hold access to the course.
func (s *ProgressService) authorize(ctx context.Context, userID, courseID, lessonID int64) error {
	if err := s.authorizeCourse(ctx, userID, courseID); err != nil {
		return err
	}

	in, err := s.courses.LessonInCourse(ctx, lessonID, courseID)
	if err != nil {
		return err
	}
	if !in {
		return fmt.Errorf("progress: lesson %d not in course %d: %w", lessonID, courseID, domain.ErrNotFound)
	}
	return nil
}

func (s *ProgressService) authorizeCourse(ctx context.Context, userID, courseID int64) error {
	allowed, err := s.access.CanAccess(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("progress: %w", domain.ErrAccessDenied)
		}
		return err
	}
	if !allowed {
		return fmt.Errorf("progress: user %d lacks access to course %d: %w", userID, courseID, domain.ErrAccessDenied)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"learnhub/internal/domain"
	"learnhub/internal/models"
	"learnhub/internal/repository"
)

// AccessUserRepository defines the role lookup used by access checks.
type AccessUserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AccessCourseRepository defines mentor membership lookup.
type AccessCourseRepository interface {
	IsMentor(ctx context.Context, userID, courseID int64) (bool, error)
}

// AccessTransactionRepository defines the paid-purchase existence check.
type AccessTransactionRepository interface {
	HasPaid(ctx context.Context, userID, courseID int64) (bool, error)
}

// GrantCache caches computed access grants. A miss or a cache failure is
// never fatal: the grant is recomputed from the store.
type GrantCache interface {
	Get(ctx context.Context, userID, courseID int64) (allowed, hit bool, err error)
	Save(ctx context.Context, userID, courseID int64, allowed bool) error
	Invalidate(ctx context.Context, userID, courseID int64) error
}

// AccessService answers "can this user access this course's content".
// The admin override and the mentor path are composed explicitly here rather
// than hidden in a global hook, so every caller sees the full rule.
type AccessService struct {
	users        AccessUserRepository
	courses      AccessCourseRepository
	transactions AccessTransactionRepository
	cache        GrantCache
	logger       *zap.Logger
}

// NewAccessService builds service.
func NewAccessService(
	users AccessUserRepository,
	courses AccessCourseRepository,
	transactions AccessTransactionRepository,
	cache GrantCache,
	logger *zap.Logger,
) *AccessService {
	return &AccessService{
		users:        users,
		courses:      courses,
		transactions: transactions,
		cache:        cache,
		logger:       logger,
	}
}

// CanAccess returns true when the user is an admin, a mentor of the course,
// or holds a paid transaction for it. Pure read; cheap enough to run on
// every content-serving request.
func (s *AccessService) CanAccess(ctx context.Context, userID, courseID int64) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, fmt.Errorf("access: user %d: %w", userID, domain.ErrNotFound)
		}
		return false, err
	}

	if user.Role == models.RoleAdmin {
		return true, nil
	}

	if allowed, hit, err := s.cache.Get(ctx, userID, courseID); err != nil {
		s.logger.Warn("grant cache read failed", zap.Error(err))
	} else if hit {
		return allowed, nil
	}

	allowed := false
	if user.Role == models.RoleMentor {
		mentor, err := s.courses.IsMentor(ctx, userID, courseID)
		if err != nil {
			return false, err
		}
		allowed = mentor
	}

	if !allowed {
		paid, err := s.transactions.HasPaid(ctx, userID, courseID)
		if err != nil {
			return false, err
		}
		allowed = paid
	}

	if err := s.cache.Save(ctx, userID, courseID, allowed); err != nil {
		s.logger.Warn("grant cache write failed", zap.Error(err))
	}
	return allowed, nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"learnhub/internal/domain"
	"learnhub/internal/models"
)

func newAccessFixture() (*AccessService, *fakeUserRepo, *fakeCourseRepo, *fakeTxRepo, *fakeGrantCache) {
	users := newFakeUserRepo()
	courses := newFakeCourseRepo()
	txRepo := newFakeTxRepo()
	cache := newFakeGrantCache()
	svc := NewAccessService(users, courses, txRepo, cache, zap.NewNop())
	return svc, users, courses, txRepo, cache
}

func TestCanAccessAdminOverride(t *testing.T) {
	svc, users, _, _, _ := newAccessFixture()
	admin := users.add(models.User{Email: "admin@learnhub.test", Role: models.RoleAdmin})

	allowed, err := svc.CanAccess(context.Background(), admin.ID, 42)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if !allowed {
		t.Error("admin must access any course")
	}
}

func TestCanAccessMentorOfCourse(t *testing.T) {
	svc, users, courses, _, _ := newAccessFixture()
	mentor := users.add(models.User{Email: "mentor@learnhub.test", Role: models.RoleMentor})
	courses.addMentor(mentor.ID, 42)

	allowed, err := svc.CanAccess(context.Background(), mentor.ID, 42)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if !allowed {
		t.Error("mentor must access their own course")
	}

	allowed, err = svc.CanAccess(context.Background(), mentor.ID, 43)
	if err != nil {
		t.Fatalf("CanAccess other course: %v", err)
	}
	if allowed {
		t.Error("mentor must not access a course they do not teach")
	}
}

func TestCanAccessFollowsPaidTransaction(t *testing.T) {
	svc, users, _, txRepo, cache := newAccessFixture()
	buyer := users.add(models.User{Email: "b@learnhub.test", Role: models.RoleStudent})

	allowed, err := svc.CanAccess(context.Background(), buyer.ID, 42)
	if err != nil {
		t.Fatalf("CanAccess before purchase: %v", err)
	}
	if allowed {
		t.Error("student must not access an unpurchased course")
	}

	tx := &models.Transaction{BookingTrxID: "LH-TEST", UserID: buyer.ID, CourseID: 42}
	if err := txRepo.Create(context.Background(), tx); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	if _, err := txRepo.MarkPaid(context.Background(), tx.ID, time.Now()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	// The unpaid result is cached; a real purchase invalidates it first.
	if err := cache.Invalidate(context.Background(), buyer.ID, 42); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	allowed, err = svc.CanAccess(context.Background(), buyer.ID, 42)
	if err != nil {
		t.Fatalf("CanAccess after purchase: %v", err)
	}
	if !allowed {
		t.Error("student must access the course after a paid transaction")
	}
}

func TestCanAccessServesCachedGrant(t *testing.T) {
	svc, users, _, _, cache := newAccessFixture()
	buyer := users.add(models.User{Email: "c@learnhub.test", Role: models.RoleStudent})

	if err := cache.Save(context.Background(), buyer.ID, 42, true); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	allowed, err := svc.CanAccess(context.Background(), buyer.ID, 42)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if !allowed {
		t.Error("cached grant must be honored")
	}
}

func TestCanAccessUnknownUser(t *testing.T) {
	svc, _, _, _, _ := newAccessFixture()

	_, err := svc.CanAccess(context.Background(), 999, 42)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

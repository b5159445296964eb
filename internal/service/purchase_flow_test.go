package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"learnhub/internal/gateway"
	"learnhub/internal/models"
)

// End-to-end over the service layer: checkout, webhook confirmation, access
// flip, lesson completion, rollup.
func TestPurchaseToProgressFlow(t *testing.T) {
	logger := zap.NewNop()
	users := newFakeUserRepo()
	courses := newFakeCourseRepo()
	txRepo := newFakeTxRepo()
	discounts := newFakeDiscountRepo()
	cache := newFakeGrantCache()
	store := newFakeProgressStore()
	gateways := &fakeGatewayResolver{setting: &models.GatewaySetting{
		ID: 1, Gateway: models.PaymentTypeTripay, AdminFeeAmount: 2500, IsActive: true,
	}}

	buyer := users.add(models.User{Email: "buyer@learnhub.test", Role: models.RoleStudent})
	courses.addCourse(models.Course{ID: 10, Slug: "sql-deep-dive", PriceAmount: 90000, IsPublished: true})
	courses.addLesson(100, 10)
	courses.addLesson(101, 10)

	accessSvc := NewAccessService(users, courses, txRepo, cache, logger)
	checkoutSvc := NewCheckoutService(txRepo, courses, discounts, gateways, cache, logger)
	progressSvc := NewProgressService(accessSvc, courses, store, logger)

	ctx := context.Background()

	tx, err := checkoutSvc.CreateTransaction(ctx, CreateTransactionInput{UserID: buyer.ID, CourseID: 10})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	allowed, err := accessSvc.CanAccess(ctx, buyer.ID, 10)
	if err != nil {
		t.Fatalf("CanAccess before payment: %v", err)
	}
	if allowed {
		t.Fatal("unpaid transaction must not grant access")
	}

	_, event, err := checkoutSvc.ConfirmPayment(ctx, gateway.Result{
		BookingTrxID: tx.BookingTrxID,
		Paid:         true,
		RawStatus:    "PAID",
	})
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if event == nil {
		t.Fatal("confirmation must emit the purchase event")
	}

	allowed, err = accessSvc.CanAccess(ctx, buyer.ID, 10)
	if err != nil {
		t.Fatalf("CanAccess after payment: %v", err)
	}
	if !allowed {
		t.Fatal("paid transaction must grant access immediately")
	}

	rec, err := progressSvc.MarkCompleted(ctx, buyer.ID, 10, 100, 120)
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if !rec.IsCompleted || rec.TimeSpentSeconds != 120 {
		t.Fatalf("record = %+v, want completed with 120s", rec)
	}

	rollup, err := progressSvc.CourseProgress(ctx, buyer.ID, 10)
	if err != nil {
		t.Fatalf("CourseProgress: %v", err)
	}
	if rollup.CompletedCount != 1 || rollup.TotalLessons != 2 || rollup.Percent != 50 {
		t.Fatalf("rollup = %+v, want 1/2 = 50%%", rollup)
	}
}

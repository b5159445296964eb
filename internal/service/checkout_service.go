package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"learnhub/internal/domain"
	"learnhub/internal/gateway"
	"learnhub/internal/models"
	"learnhub/internal/repository"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// CheckoutTransactionRepository defines transaction storage used by checkout.
type CheckoutTransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByBookingTrxID(ctx context.Context, bookingTrxID string) (*models.Transaction, error)
	MarkPaid(ctx context.Context, id int64, paidAt time.Time) (bool, error)
}

// CheckoutCourseRepository defines course lookups used by checkout.
type CheckoutCourseRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

// CheckoutDiscountRepository defines discount validation and redemption.
type CheckoutDiscountRepository interface {
	GetByCode(ctx context.Context, code string) (*models.Discount, error)
	IncrementUsage(ctx context.Context, id int64) error
}

// ActiveGatewayResolver resolves the single active gateway setting.
type ActiveGatewayResolver interface {
	Active(ctx context.Context) (*models.GatewaySetting, error)
}

// GrantInvalidator drops cached access grants after a purchase lands.
type GrantInvalidator interface {
	Invalidate(ctx context.Context, userID, courseID int64) error
}

// PurchaseEvent is the CoursePurchased fact. ConfirmPayment returns it to
// exactly one caller per transaction; that caller dispatches it. No side
// effects fire from inside the state transition itself.
type PurchaseEvent struct {
	TransactionID    int64     `json:"transaction_id"`
	BookingTrxID     string    `json:"booking_trx_id"`
	UserID           int64     `json:"user_id"`
	CourseID         int64     `json:"course_id"`
	GrandTotalAmount int64     `json:"grand_total_amount"`
	NetRevenue       int64     `json:"net_revenue"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// CheckoutService governs transaction creation and payment confirmation.
type CheckoutService struct {
	transactions CheckoutTransactionRepository
	courses      CheckoutCourseRepository
	discounts    CheckoutDiscountRepository
	gateways     ActiveGatewayResolver
	grants       GrantInvalidator
	logger       *zap.Logger
}

// NewCheckoutService builds service.
func NewCheckoutService(
	transactions CheckoutTransactionRepository,
	courses CheckoutCourseRepository,
	discounts CheckoutDiscountRepository,
	gateways ActiveGatewayResolver,
	grants GrantInvalidator,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		transactions: transactions,
		courses:      courses,
		discounts:    discounts,
		gateways:     gateways,
		grants:       grants,
		logger:       logger,
	}
}

// CreateTransactionInput is the checkout request.
type CreateTransactionInput struct {
	UserID       int64
	CourseID     int64
	DiscountCode string
}

// CreateTransaction builds an unpaid transaction priced against the course
// and the active gateway's admin fee. An invalid, expired or exhausted
// discount code fails validation instead of being silently dropped.
func (s *CheckoutService) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*models.Transaction, error) {
	if input.UserID == 0 || input.CourseID == 0 {
		return nil, fmt.Errorf("checkout: buyer and course required: %w", domain.ErrValidation)
	}

	course, err := s.courses.GetByID(ctx, input.CourseID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, fmt.Errorf("checkout: course %d: %w", input.CourseID, domain.ErrNotFound)
		}
		return nil, err
	}

	setting, err := s.gateways.Active(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrGatewayNotFound) {
			return nil, fmt.Errorf("checkout: no active payment gateway: %w", domain.ErrValidation)
		}
		return nil, err
	}

	var discount *models.Discount
	var discountAmount int64
	if input.DiscountCode != "" {
		discount, err = s.discounts.GetByCode(ctx, input.DiscountCode)
		if err != nil {
			if errors.Is(err, repository.ErrDiscountNotFound) {
				return nil, fmt.Errorf("checkout: unknown discount code: %w", domain.ErrValidation)
			}
			return nil, err
		}
		if !discount.Usable(timeNow()) {
			return nil, fmt.Errorf("checkout: discount code no longer usable: %w", domain.ErrValidation)
		}
		if discount.Amount > course.PriceAmount {
			return nil, fmt.Errorf("checkout: discount exceeds course price: %w", domain.ErrValidation)
		}
		discountAmount = discount.Amount
	}

	if discount != nil {
		if err := s.discounts.IncrementUsage(ctx, discount.ID); err != nil {
			if errors.Is(err, repository.ErrDiscountExhausted) {
				return nil, fmt.Errorf("checkout: discount code no longer usable: %w", domain.ErrValidation)
			}
			return nil, err
		}
	}

	tx := &models.Transaction{
		BookingTrxID:     models.NewBookingTrxID(),
		UserID:           input.UserID,
		CourseID:         input.CourseID,
		GrandTotalAmount: course.PriceAmount + setting.AdminFeeAmount,
		AdminFeeAmount:   setting.AdminFeeAmount,
		DiscountAmount:   discountAmount,
		PaymentType:      setting.Gateway,
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		zap.String("booking_trx_id", tx.BookingTrxID),
		zap.Int64("user_id", tx.UserID),
		zap.Int64("course_id", tx.CourseID),
		zap.Int64("grand_total", tx.GrandTotalAmount),
	)
	return tx, nil
}

// ConfirmPayment applies a verified paid gateway result. It is idempotent:
// the first caller per transaction wins the unpaid-to-paid transition and
// receives the PurchaseEvent; every later caller (gateway retry storms
// included) gets the paid record back with a nil event and no side effects.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, result gateway.Result) (*models.Transaction, *PurchaseEvent, error) {
	if !result.Paid {
		return nil, nil, fmt.Errorf("checkout: gateway status %q is not paid: %w", result.RawStatus, domain.ErrValidation)
	}

	tx, err := s.transactions.GetByBookingTrxID(ctx, result.BookingTrxID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, nil, fmt.Errorf("checkout: transaction %s: %w", result.BookingTrxID, domain.ErrNotFound)
		}
		return nil, nil, err
	}

	if tx.IsPaid {
		return tx, nil, nil
	}

	paidAt := timeNow().UTC()
	won, err := s.transactions.MarkPaid(ctx, tx.ID, paidAt)
	if err != nil {
		return nil, nil, err
	}
	if !won {
		// Lost the race to a concurrent delivery; surface the paid record.
		paid, err := s.transactions.GetByBookingTrxID(ctx, result.BookingTrxID)
		if err != nil {
			return nil, nil, err
		}
		return paid, nil, nil
	}

	tx.IsPaid = true
	if tx.StartedAt == nil {
		tx.StartedAt = &paidAt
	}

	if err := s.grants.Invalidate(ctx, tx.UserID, tx.CourseID); err != nil {
		s.logger.Warn("failed to invalidate access grant cache",
			zap.Int64("user_id", tx.UserID),
			zap.Int64("course_id", tx.CourseID),
			zap.Error(err),
		)
	}

	s.logger.Info("transaction confirmed paid",
		zap.String("booking_trx_id", tx.BookingTrxID),
		zap.Int64("user_id", tx.UserID),
		zap.Int64("course_id", tx.CourseID),
		zap.Int64("net_revenue", tx.NetRevenue()),
	)

	event := &PurchaseEvent{
		TransactionID:    tx.ID,
		BookingTrxID:     tx.BookingTrxID,
		UserID:           tx.UserID,
		CourseID:         tx.CourseID,
		GrandTotalAmount: tx.GrandTotalAmount,
		NetRevenue:       tx.NetRevenue(),
		OccurredAt:       paidAt,
	}
	return tx, event, nil
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment gateway identifiers accepted on transactions.
const (
	PaymentTypeMidtrans = "midtrans"
	PaymentTypeTripay   = "tripay"
)

// Transaction records a course purchase attempt and its payment state.
// StartedAt stays nil until the gateway confirms payment.
type Transaction struct {
	ID               int64      `db:"id" json:"id"`
	BookingTrxID     string     `db:"booking_trx_id" json:"booking_trx_id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	CourseID         int64      `db:"course_id" json:"course_id"`
	GrandTotalAmount int64      `db:"grand_total_amount" json:"grand_total_amount"`
	AdminFeeAmount   int64      `db:"admin_fee_amount" json:"admin_fee_amount"`
	DiscountAmount   int64      `db:"discount_amount" json:"discount_amount"`
	PaymentType      string     `db:"payment_type" json:"payment_type"`
	IsPaid           bool       `db:"is_paid" json:"is_paid"`
	StartedAt        *time.Time `db:"started_at" json:"started_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	DeletedAt        *time.Time `db:"deleted_at" json:"-"`
}

// NetRevenue is derived, never stored: grand total minus admin fee minus
// discount. Creation validates it can never go negative.
func (t *Transaction) NetRevenue() int64 {
	return t.GrandTotalAmount - t.AdminFeeAmount - t.DiscountAmount
}

// NewBookingTrxID generates an external-facing booking code.
func NewBookingTrxID() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "LH-" + fragment[:12]
}

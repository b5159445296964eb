package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"learnhub/internal/models"
)

// ErrTransactionNotFound is returned when no transaction matches the lookup.
var ErrTransactionNotFound = errors.New("repository: transaction not found")

// PaidTransactionFilter narrows the paid-transaction listing for exports.
// Zero values mean "no filter".
type PaidTransactionFilter struct {
	CourseID int64
	MentorID int64
	From     time.Time
	To       time.Time
}

// TransactionRepository persists purchase transactions.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository returns repository.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new unpaid transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	const query = `
		INSERT INTO transactions
			(booking_trx_id, user_id, course_id, grand_total_amount, admin_fee_amount,
			 discount_amount, payment_type, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		tx.BookingTrxID,
		tx.UserID,
		tx.CourseID,
		tx.GrandTotalAmount,
		tx.AdminFeeAmount,
		tx.DiscountAmount,
		tx.PaymentType,
	).Scan(&tx.ID, &tx.CreatedAt)
}

// GetByBookingTrxID fetches a transaction by its external booking code.
func (r *TransactionRepository) GetByBookingTrxID(ctx context.Context, bookingTrxID string) (*models.Transaction, error) {
	const query = `
		SELECT id, booking_trx_id, user_id, course_id, grand_total_amount,
		       admin_fee_amount, discount_amount, payment_type, is_paid,
		       started_at, created_at
		FROM transactions
		WHERE booking_trx_id = $1 AND deleted_at IS NULL
	`
	var tx models.Transaction
	err := r.db.QueryRowContext(ctx, query, bookingTrxID).Scan(
		&tx.ID,
		&tx.BookingTrxID,
		&tx.UserID,
		&tx.CourseID,
		&tx.GrandTotalAmount,
		&tx.AdminFeeAmount,
		&tx.DiscountAmount,
		&tx.PaymentType,
		&tx.IsPaid,
		&tx.StartedAt,
		&tx.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// MarkPaid performs the unpaid-to-paid transition as a conditional update and
// reports whether this call won it. Concurrent webhook deliveries for the
// same transaction see at most one true return; losers get false with no
// rows touched. started_at is only set when still NULL.
func (r *TransactionRepository) MarkPaid(ctx context.Context, id int64, paidAt time.Time) (bool, error) {
	const query = `
		UPDATE transactions
		SET is_paid = TRUE,
		    started_at = COALESCE(started_at, $2)
		WHERE id = $1 AND is_paid = FALSE AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, paidAt)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// HasPaid reports whether a paid transaction exists for (user, course).
func (r *TransactionRepository) HasPaid(ctx context.Context, userID, courseID int64) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND course_id = $2 AND is_paid = TRUE AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListPaid returns paid transactions matching the filter, newest first.
// Used by the administrative CSV export.
func (r *TransactionRepository) ListPaid(ctx context.Context, filter PaidTransactionFilter) ([]models.Transaction, error) {
	const query = `
		SELECT t.id, t.booking_trx_id, t.user_id, t.course_id, t.grand_total_amount,
		       t.admin_fee_amount, t.discount_amount, t.payment_type, t.is_paid,
		       t.started_at, t.created_at
		FROM transactions t
		WHERE t.is_paid = TRUE
		  AND t.deleted_at IS NULL
		  AND ($1 = 0 OR t.course_id = $1)
		  AND ($2 = 0 OR EXISTS (
		        SELECT 1 FROM course_mentors cm
		        WHERE cm.course_id = t.course_id AND cm.user_id = $2
		  ))
		  AND ($3::timestamptz IS NULL OR t.started_at >= $3)
		  AND ($4::timestamptz IS NULL OR t.started_at < $4)
		ORDER BY t.started_at DESC
	`
	var from, to interface{}
	if !filter.From.IsZero() {
		from = filter.From
	}
	if !filter.To.IsZero() {
		to = filter.To
	}

	rows, err := r.db.QueryContext(ctx, query, filter.CourseID, filter.MentorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID,
			&tx.BookingTrxID,
			&tx.UserID,
			&tx.CourseID,
			&tx.GrandTotalAmount,
			&tx.AdminFeeAmount,
			&tx.DiscountAmount,
			&tx.PaymentType,
			&tx.IsPaid,
			&tx.StartedAt,
			&tx.CreatedAt,
		); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

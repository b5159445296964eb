package repository

import (
	"context"
	"database/sql"
	"errors"

	"learnhub/internal/models"
)

// Discount lookup and redemption failures.
var (
	ErrDiscountNotFound  = errors.New("repository: discount not found")
	ErrDiscountExhausted = errors.New("repository: discount usage limit reached")
)

// DiscountRepository persists discount codes.
type DiscountRepository struct {
	db *sql.DB
}

// NewDiscountRepository returns repository.
func NewDiscountRepository(db *sql.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

// GetByCode fetches a discount by its code.
func (r *DiscountRepository) GetByCode(ctx context.Context, code string) (*models.Discount, error) {
	const query = `
		SELECT id, code, amount, usage_limit, used_count, expires_at, is_active
		FROM discounts
		WHERE code = $1
	`
	var d models.Discount
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&d.ID,
		&d.Code,
		&d.Amount,
		&d.UsageLimit,
		&d.UsedCount,
		&d.ExpiresAt,
		&d.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// IncrementUsage bumps used_count without exceeding the usage limit. The
// WHERE clause makes the increment conditional so concurrent redemptions of
// the last slot cannot both succeed.
func (r *DiscountRepository) IncrementUsage(ctx context.Context, id int64) error {
	const query = `
		UPDATE discounts
		SET used_count = used_count + 1
		WHERE id = $1 AND (usage_limit = 0 OR used_count < usage_limit)
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDiscountExhausted
	}
	return nil
}

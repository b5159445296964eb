package repository

import (
	"context"
	"database/sql"
	"errors"

	"learnhub/internal/models"
)

// ErrGatewayNotFound is returned when no gateway setting matches.
var ErrGatewayNotFound = errors.New("repository: gateway setting not found")

// GatewayRepository persists payment gateway settings. At most one row is
// active; Activate enforces that inside one DB transaction.
type GatewayRepository struct {
	db *sql.DB
}

// NewGatewayRepository returns repository.
func NewGatewayRepository(db *sql.DB) *GatewayRepository {
	return &GatewayRepository{db: db}
}

// Active resolves the currently active gateway setting. Resolution happens
// per request, never through a process-wide singleton.
func (r *GatewayRepository) Active(ctx context.Context) (*models.GatewaySetting, error) {
	const query = `
		SELECT id, gateway, merchant_code, server_key, private_key,
		       admin_fee_amount, is_active, updated_at
		FROM gateway_settings
		WHERE is_active = TRUE
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

// GetByGateway fetches the setting row for a gateway identifier.
func (r *GatewayRepository) GetByGateway(ctx context.Context, gateway string) (*models.GatewaySetting, error) {
	const query = `
		SELECT id, gateway, merchant_code, server_key, private_key,
		       admin_fee_amount, is_active, updated_at
		FROM gateway_settings
		WHERE gateway = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, gateway))
}

// Activate makes the given setting the single active one. Deactivate-all and
// activate-one run in the same transaction so concurrent activations cannot
// leave two active rows.
func (r *GatewayRepository) Activate(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE gateway_settings SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `UPDATE gateway_settings SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrGatewayNotFound
	}

	return tx.Commit()
}

func (r *GatewayRepository) scanOne(row *sql.Row) (*models.GatewaySetting, error) {
	var gs models.GatewaySetting
	err := row.Scan(
		&gs.ID,
		&gs.Gateway,
		&gs.MerchantCode,
		&gs.ServerKey,
		&gs.PrivateKey,
		&gs.AdminFeeAmount,
		&gs.IsActive,
		&gs.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGatewayNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gs, nil
}

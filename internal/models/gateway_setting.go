package models

import "time"

// GatewaySetting holds the credentials for one payment gateway. At most one
// row is active at a time; activation flips rows inside a single DB
// transaction so resolution always sees exactly zero or one active gateway.
type GatewaySetting struct {
	ID             int64     `db:"id" json:"id"`
	Gateway        string    `db:"gateway" json:"gateway"`
	MerchantCode   string    `db:"merchant_code" json:"merchant_code"`
	ServerKey      string    `db:"server_key" json:"-"`
	PrivateKey     string    `db:"private_key" json:"-"`
	AdminFeeAmount int64     `db:"admin_fee_amount" json:"admin_fee_amount"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

package models

import "time"

// Discount is a redeemable code with a usage budget and expiry window.
type Discount struct {
	ID         int64      `db:"id" json:"id"`
	Code       string     `db:"code" json:"code"`
	Amount     int64      `db:"amount" json:"amount"`
	UsageLimit int        `db:"usage_limit" json:"usage_limit"`
	UsedCount  int        `db:"used_count" json:"used_count"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	IsActive   bool       `db:"is_active" json:"is_active"`
}

// Usable reports whether the code can still be redeemed at the given moment.
func (d *Discount) Usable(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit {
		return false
	}
	if d.ExpiresAt != nil && now.After(*d.ExpiresAt) {
		return false
	}
	return true
}

package models

import "time"

// Voucher statuses. Expired is derived from ExpiresAt and is not written by redemption attempts.
// Pending and Void are internal: a Pending voucher is reserved while delivery is in flight,
// a Void voucher was never delivered and its debit has been reversed.
const (
	VoucherStatusActive   = "Active"
	VoucherStatusRedeemed = "Redeemed"
	VoucherStatusExpired  = "Expired"
	VoucherStatusPending  = "Pending"
	VoucherStatusVoid     = "Void"
)

// IssuedVoucherStatuses are the stored statuses of vouchers that reached their recipient.
var IssuedVoucherStatuses = []string{VoucherStatusActive, VoucherStatusRedeemed}

// Voucher is a single-use, time-limited P-Code.
type Voucher struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Code      string `gorm:"type:text;not null;uniqueIndex"` // Redeemable code.
	Recipient string `gorm:"type:text;not null;index"`       // Normalized recipient contact.

	AmountCents int64  `gorm:"not null"`                          // Face value in cents.
	Status      string `gorm:"type:text;not null;default:'Active'"` // Stored lifecycle status.

	IssuedAt  time.Time `gorm:"not null;index"` // Issue time (UTC).
	ExpiresAt time.Time `gorm:"not null"`       // Expiry time (UTC).

	IssuerID string   `gorm:"type:text;not null;index"` // Issuing operator.
	Issuer   *Account `gorm:"foreignKey:IssuerID"`      // Issuing operator record.
	Location string   `gorm:"type:text;not null;index"` // Issuing location.

	RedeemedAt *time.Time // Redemption time, if redeemed.
	RedeemedBy *string    `gorm:"type:text"` // Redeeming agent, if redeemed.
}

// EffectiveStatus returns the status as observed at now, deriving expiry.
func (v *Voucher) EffectiveStatus(now time.Time) string {
	if v.Status == VoucherStatusActive && !now.Before(v.ExpiresAt) {
		return VoucherStatusExpired
	}
	return v.Status
}

// Delivered reports whether the voucher reached its recipient.
func (v *Voucher) Delivered() bool {
	return v.Status == VoucherStatusActive || v.Status == VoucherStatusRedeemed
}

package models

import "time"

// Balance entry kinds.
const (
	BalanceEntryOpening  = "opening"
	BalanceEntryIssue    = "issue"
	BalanceEntryReversal = "reversal"
	BalanceEntryTopUp    = "top_up"
)

// BalanceEntry records one mutation of an operator balance.
type BalanceEntry struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	OperatorID string `gorm:"type:text;not null;index"` // Account whose balance changed.
	Kind       string `gorm:"type:text;not null"`       // opening, issue, reversal or top_up.

	AmountCents       int64 `gorm:"not null"` // Signed change in cents.
	BalanceAfterCents int64 `gorm:"not null"` // Balance after the change.

	VoucherCode *string `gorm:"type:text;index"` // Voucher that caused the debit, if any.
	ActorID     string  `gorm:"type:text;not null"`

	CreatedAt time.Time `gorm:"not null;index"` // Entry timestamp.
}

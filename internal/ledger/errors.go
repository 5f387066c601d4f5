package ledger

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Validation errors. No state is changed when one is returned.
var (
	ErrInvalidAmount    = errors.New("ledger: amount must be positive with at most two decimal places")
	ErrInvalidRecipient = errors.New("ledger: invalid recipient contact")
	ErrInvalidOperator  = errors.New("ledger: operator id is required")
)

// Business rule errors.
var (
	ErrOperatorNotFound    = errors.New("ledger: operator not found")
	ErrOperatorInactive    = errors.New("ledger: operator is inactive")
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	ErrCodeCollision       = errors.New("ledger: could not generate a unique code")
	ErrDeliveryFailed      = errors.New("ledger: voucher delivery failed")
	ErrBatchHalted         = errors.New("ledger: batch halted before this recipient")
)

// Redemption errors.
var (
	ErrVoucherNotFound = errors.New("ledger: voucher not found")
	ErrAlreadyRedeemed = errors.New("ledger: voucher already redeemed")
	ErrExpired         = errors.New("ledger: voucher expired")
)

// errCodeTaken signals a code collision for a single attempt.
var errCodeTaken = errors.New("ledger: code taken")

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidRecipient) ||
		errors.Is(err, ErrInvalidOperator)
}

// isUniqueViolation detects unique constraint failures on both sqlite and postgres.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key")
}

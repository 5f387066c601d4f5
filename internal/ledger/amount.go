package ledger

import "github.com/shopspring/decimal"

var maxAmount = decimal.NewFromInt(10_000_000)

// AmountToCents converts a positive amount with at most two decimal places to cents.
func AmountToCents(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() || amount.GreaterThan(maxAmount) {
		return 0, ErrInvalidAmount
	}
	if !amount.Round(2).Equal(amount) {
		return 0, ErrInvalidAmount
	}
	return amount.Shift(2).IntPart(), nil
}

// CentsToAmount converts cents to a decimal currency amount.
func CentsToAmount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

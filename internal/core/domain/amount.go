package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountMissing     = errors.New("amount is required")
	ErrAmountInvalid     = errors.New("amount is not a valid number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)

// ParseAmount turns the raw amount string the user typed into a decimal.
// Amounts travel as decimal strings end to end; nothing in the cashier ever
// touches floats.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrAmountMissing
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrAmountInvalid
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}
	return amount, nil
}

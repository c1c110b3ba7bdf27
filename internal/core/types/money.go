// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Rate is a tax rate expressed as a fraction (0.10 for 10%).
type Rate = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Yen creates a Money value from a whole yen amount.
func Yen(v int64) Money {
	return decimal.NewFromInt(v)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// FloorYen truncates toward negative infinity to whole yen.
// Consumption tax is always rounded down per line.
func FloorYen(m Money) Money {
	return m.Floor()
}

// FormatAmount renders m with no fractional digits when it is a whole number,
// otherwise with two. Used by exports and API responses.
func FormatAmount(m Money) string {
	if m.Equal(m.Truncate(0)) {
		return m.StringFixed(0)
	}
	return m.StringFixed(2)
}

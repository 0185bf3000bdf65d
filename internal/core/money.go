// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents, decimals and whole currency units.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a positive amount with two-decimal precision, stored in cents.
type Money struct {
	Cents int64
}

// maxAmount matches a DECIMAL(10,2) column.
var maxAmount = decimal.RequireFromString("99999999.99")

// ParseAmount converts a decimal string to Money.
//
// A comma is read as the decimal separator only when it is the sole separator
// and is followed by one or two digits (12,34). Thousands separators such as
// "1,000" are rejected rather than misread. Amounts round half-up to two
// decimal places. Zero, negative and non-numeric inputs are rejected with
// ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,3")   -> 1230 cents
//	ParseAmount("1,000")  -> ErrInvalidAmount
//	ParseAmount("0.004")  -> ErrInvalidAmount (rounds to zero)
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		var ok bool
		if s, ok = decimalComma(s); !ok {
			return Money{}, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() || d.GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Shift(2).IntPart()}, nil
}

// decimalComma rewrites "12,34" to "12.34". Any other use of a comma fails.
func decimalComma(s string) (string, bool) {
	if strings.Count(s, ",") != 1 || strings.Contains(s, ".") {
		return "", false
	}
	i := strings.IndexByte(s, ',')
	frac := s[i+1:]
	if len(frac) < 1 || len(frac) > 2 {
		return "", false
	}
	for _, c := range frac {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return s[:i] + "." + frac, true
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the exact decimal value of the amount.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders the amount with exactly two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// WholeUnits truncates the amount towards zero, dropping the cents.
// Aggregates are accumulated at this granularity.
func (m Money) WholeUnits() int64 {
	return m.Decimal().Truncate(0).IntPart()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// Package core holds the domain types shared by the ledger engine and its
// collaborators: transactions, money, budget categories and derived views.
//
// This file contains money parsing and formatting. Amounts are stored as
// integer cents; calculations never go through floating point.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a non-negative monetary magnitude in cents. The sign of a
// transaction is carried by its type, never by the amount.
type Money struct {
	Cents int64
}

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a raw decimal string to cents. It accepts both dot
// and comma decimal separators and rounds half-up past the second decimal.
//
// Unparsable or negative input yields zero with defaulted=true rather than
// an error: the ledger stays usable with partial input, and the flag lets a
// caller distinguish a coerced zero from an explicit one.
func ParseAmount(s string) (m Money, defaulted bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, true
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return Money{}, true
	}
	return Money{Cents: d.Shift(2).Round(0).IntPart()}, false
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) IsZero() bool      { return m.Cents == 0 }
func (m Money) Negative() bool    { return m.Cents < 0 }

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// Decimal returns the exact decimal value, e.g. 1234 cents -> 12.34.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Units returns the whole-currency value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

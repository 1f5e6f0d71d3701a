// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Decimal text, both from user input and
// from persisted ledgers, is converted with shopspring/decimal and rounded
// half away from zero to two places.
package core

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmountUnits bounds the absolute value of a single amount, in units.
const MaxAmountUnits = 10_000_000_000_000

var maxCents = decimal.NewFromInt(MaxAmountUnits * 100)

// ParseAmount converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and a
// leading sign. Digits past the second decimal place are rounded.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents
//	ParseAmount("-3")     -> -300 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return moneyFromDecimal(d)
}

// NewMoney builds Money from whole units and cents, e.g. NewMoney(12, 50).
func NewMoney(units, cents int64) Money {
	if units < 0 {
		return Money{Cents: units*100 - cents}
	}
	return Money{Cents: units*100 + cents}
}

func moneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Add returns the sum of m and o, saturating at the int64 limits.
func (m Money) Add(o Money) Money {
	sum, ok := m.AddChecked(o)
	if ok {
		return sum
	}
	if o.Cents > 0 {
		return Money{Cents: math.MaxInt64}
	}
	return Money{Cents: math.MinInt64}
}

// AddChecked returns the sum of m and o and false if it overflows int64.
func (m Money) AddChecked(o Money) (Money, bool) {
	sum := m.Cents + o.Cents
	if (o.Cents > 0 && sum < m.Cents) || (o.Cents < 0 && sum > m.Cents) {
		return Money{}, false
	}
	return Money{Cents: sum}, true
}

// Decimal returns the amount in units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON writes the amount as a bare JSON number in units (12.5, not "12.50").
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return ErrInvalidAmount
		}
		raw = s
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return ErrInvalidAmount
	}
	v, err := moneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

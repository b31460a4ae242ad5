package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is a fixed-point monetary amount stored as signed minor units
// (cents). All balance and split arithmetic happens in minor units so that
// sums are exact; float64 appears only at the JSON boundary.
type Money struct {
	Cents int64
}

// ErrInvalidAmount is returned when a monetary input cannot be parsed or is
// outside the accepted range.
var ErrInvalidAmount = errors.New("invalid amount")

// NewMoney builds a Money from whole units and cents.
func NewMoney(units int64, cents int64) Money {
	return Money{Cents: units*100 + cents}
}

// MoneyFromFloat converts a numeric amount (e.g. from a JSON body) to minor
// units with half-up rounding. Non-finite values are rejected.
func MoneyFromFloat(v float64) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}, fmt.Errorf("%w: non-finite value", ErrInvalidAmount)
	}
	if math.Abs(v) > float64(math.MaxInt64)/200 {
		return Money{}, fmt.Errorf("%w: value out of range", ErrInvalidAmount)
	}
	return Money{Cents: int64(math.Round(v * 100))}, nil
}

// ParseMoney converts a decimal string to Money with half-up rounding on the
// third decimal place. Both dot and comma decimal separators are accepted.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafe = math.MaxInt64 / 100
	if units > maxSafe {
		return Money{}, ErrInvalidAmount
	}

	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}

	cents := units*100 + frac
	if negative {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.Cents < other.Cents
}

// Float64 returns the amount in whole units for display and JSON encoding.
// Use Cents for all arithmetic.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as a plain decimal, e.g. "-12.50".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// SplitEvenly divides the amount among n participants in minor units. The
// remainder is handed out one cent at a time to the first (amount mod n)
// shares so the parts always sum back to the whole.
func (m Money) SplitEvenly(n int) []Money {
	if n <= 0 {
		return nil
	}
	base := m.Cents / int64(n)
	remainder := m.Cents - base*int64(n)

	shares := make([]Money, n)
	for i := range shares {
		shares[i] = Money{Cents: base}
		if int64(i) < remainder {
			shares[i].Cents++
		}
	}
	return shares
}

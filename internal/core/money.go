// Package core holds the domain types shared by the conversion pipeline.
//
// This file contains money parsing and formatting. Amounts are stored as
// integer cents so the exported values survive the round trip without
// floating-point drift.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an exact monetary amount in cents. Negative values are valid on
// input (card credits) and are removed by the positive-amount filter.
type Money struct {
	Cents int64
}

// ParseMoney converts a decimal string such as "45.00", "-12.50" or
// "1,234.56" to cents. Thousands separators are stripped and half-up
// rounding is applied to the third decimal place.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", "")

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

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}

	// Take the first two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if negative {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// Positive reports whether the amount is strictly greater than zero.
func (m Money) Positive() bool {
	return m.Cents > 0
}

// String formats the amount with two decimal places, e.g. "45.00".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
}

// Dollars returns the amount as a float64 for display purposes only.
// Use cents for calculations.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// Package money implements fixed-point currency arithmetic in paise.
//
// Every amount inside the ledger is an integer count of minor units; decimal
// strings exist only at the HTTP and report boundary. Floating point never
// touches a balance.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in paise (1/100 rupee).
type Money int64

// PaisePerRupee is the minor-unit scale.
const PaisePerRupee = 100

var (
	// ErrMalformedAmount indicates an unparseable decimal amount.
	ErrMalformedAmount = errors.New("money: malformed amount")
	// ErrTooPrecise indicates more than two decimal places.
	ErrTooPrecise = errors.New("money: more than two decimal places")
)

// FromRupees builds a Money from whole rupees and paise.
func FromRupees(rupees, paise int64) Money {
	return Money(rupees*PaisePerRupee + paise)
}

// Paise returns the raw minor-unit count.
func (m Money) Paise() int64 { return int64(m) }

// Add returns m + other.
func (m Money) Add(other Money) Money { return m + other }

// Sub returns m - other.
func (m Money) Sub(other Money) Money { return m - other }

// IsPositive reports whether the amount is strictly positive.
func (m Money) IsPositive() bool { return m > 0 }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m == 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m < 0 }

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// ClampZero floors the amount at zero.
func (m Money) ClampZero() Money {
	if m < 0 {
		return 0
	}
	return m
}

// Parse converts a decimal rupee string ("1234.50", "₹1,234.50", "-12") into
// paise. At most two decimal places are accepted; anything finer is rejected
// rather than rounded.
func Parse(s string) (Money, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "₹")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, ErrMalformedAmount
	}

	negative := false
	switch raw[0] {
	case '-':
		negative = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}
	if raw == "" {
		return 0, ErrMalformedAmount
	}

	whole, frac, hasDot := strings.Cut(raw, ".")
	if hasDot && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	if whole == "" {
		whole = "0"
	}
	if !digitsOnly(whole) || (frac != "" && !digitsOnly(frac)) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	rupees, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}

	var paise int64
	if frac != "" {
		if len(frac) > 2 {
			return 0, fmt.Errorf("%w: %q", ErrTooPrecise, s)
		}
		for len(frac) < 2 {
			frac += "0"
		}
		paise, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
		}
	}

	total := rupees*PaisePerRupee + paise
	if negative {
		total = -total
	}
	return Money(total), nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the amount as a plain decimal rupee string ("1234.50").
func (m Money) String() string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/PaisePerRupee, v%PaisePerRupee)
}

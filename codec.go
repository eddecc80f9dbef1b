package fxswap

import (
	"fmt"
	"math/big"
	"strings"
)

// TrimZeros can be passed to [FormatAtomicFixed] to omit trailing zeros
// after the decimal point.
const TrimZeros = -1

// ParseAtomic converts a decimal string to an amount in atomic units of an
// asset with the given number of decimals.
// Fractional digits beyond decimals are silently truncated, matching ledger
// truncation semantics; shorter fractions are zero-padded to the right.
// The input string must be in one of the following formats:
//
//	1.234
//	-1234
//	+0.000001234
//	1.
//	.5
//
// ParseAtomic returns an error wrapping [ErrParse] if the string is not a
// plain decimal literal.
//
// ParseAtomic panics if decimals is negative.
func ParseAtomic(s string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		panic(fmt.Sprintf("ParseAtomic(%q, %v) failed: negative decimals", s, decimals))
	}
	neg, whole, frac, err := splitDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", s, err)
	}
	if len(frac) > decimals {
		frac = frac[:decimals]
	} else {
		frac += strings.Repeat("0", decimals-len(frac))
	}
	amount := new(big.Int)
	if digits := whole + frac; digits != "" {
		amount.SetString(digits, 10)
	}
	if neg {
		amount.Neg(amount)
	}
	return amount, nil
}

// MustParseAtomic is like [ParseAtomic] but panics if the string cannot be parsed.
func MustParseAtomic(s string, decimals int) *big.Int {
	amount, err := ParseAtomic(s, decimals)
	if err != nil {
		panic(fmt.Sprintf("ParseAtomic(%q, %v) failed: %v", s, decimals, err))
	}
	return amount
}

// FormatAtomic converts an amount in atomic units of an asset with the given
// number of decimals to a decimal string with exactly decimals digits after
// the decimal point.
// A nil amount is treated as zero.
// See also [FormatAtomicFixed].
//
// FormatAtomic panics if decimals is negative.
func FormatAtomic(amount *big.Int, decimals int) string {
	return FormatAtomicFixed(amount, decimals, decimals)
}

// FormatAtomicFixed is like [FormatAtomic] but renders exactly digits digits
// after the decimal point, truncating or zero-padding as needed.
// If digits is [TrimZeros], trailing zeros are omitted, together with the
// decimal point when no fractional digits remain.
//
// FormatAtomicFixed panics if decimals is negative.
func FormatAtomicFixed(amount *big.Int, decimals, digits int) string {
	if decimals < 0 {
		panic(fmt.Sprintf("FormatAtomicFixed(%v, %v, %v) failed: negative decimals", amount, decimals, digits))
	}
	if amount == nil {
		amount = bigZero
	}

	// Integer and fractional digits
	s := new(big.Int).Abs(amount).String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-decimals], s[len(s)-decimals:]
	switch {
	case digits < 0:
		frac = strings.TrimRight(frac, "0")
	case digits < len(frac):
		frac = frac[:digits]
	default:
		frac += strings.Repeat("0", digits-len(frac))
	}

	var b strings.Builder
	if amount.Sign() < 0 && strings.Trim(whole+frac, "0") != "" {
		b.WriteByte('-')
	}
	b.WriteString(whole)
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

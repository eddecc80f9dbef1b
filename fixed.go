package fxswap

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/govalues/decimal"
)

// Scale is the number of digits after the decimal point that every [Fixed]
// value retains internally.
// Arithmetic between two Fixed values never needs scale reconciliation,
// precision is only discarded by an explicit call to [Fixed.Unscale].
const Scale = 33

// maxExponent limits the magnitude of the exponent accepted by [ParseFixed].
const maxExponent = 1000

var (
	// ErrParse is returned when a string is not a valid decimal literal.
	ErrParse = errors.New("invalid decimal string")
	// ErrDivideByZero is returned when a divisor, reserve or rate is zero.
	ErrDivideByZero = errors.New("division by zero")
)

var (
	bigZero  = new(big.Int)
	bigTen   = big.NewInt(10)
	pow10Tab = func() [2*Scale + 1]*big.Int {
		var tab [2*Scale + 1]*big.Int
		tab[0] = big.NewInt(1)
		for i := 1; i < len(tab); i++ {
			tab[i] = new(big.Int).Mul(tab[i-1], bigTen)
		}
		return tab
	}()
	scaleFactor = pow10(Scale)
	fixedOne    = Fixed{mant: scaleFactor}
)

// pow10 returns 10^n. The result must not be modified.
func pow10(n int) *big.Int {
	if n < len(pow10Tab) {
		return pow10Tab[n]
	}
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

// Fixed represents an arbitrary-precision decimal number as a big integer
// mantissa divided by 10^[Scale].
// Its zero value corresponds to 0.
// Fixed is immutable and designed to be safe for concurrent use by multiple
// goroutines.
type Fixed struct {
	mant *big.Int // value * 10^Scale, nil means zero
}

// newFixedUnsafe takes ownership of the mantissa m.
func newFixedUnsafe(m *big.Int) Fixed {
	return Fixed{mant: m}
}

// coef returns the mantissa of f. The result must not be modified.
func (f Fixed) coef() *big.Int {
	if f.mant == nil {
		return bigZero
	}
	return f.mant
}

// NewFixed returns a number equal to mantissa / 10^exponent.
// A nil mantissa is treated as zero.
//
// NewFixed panics if exponent is greater than [Scale].
// Such a value cannot be represented without losing precision and indicates
// a misconfigured asset or a programming error.
func NewFixed(mantissa *big.Int, exponent int) Fixed {
	if exponent > Scale {
		panic(fmt.Sprintf("NewFixed(%v, %v) failed: exponent exceeds scale %v", mantissa, exponent, Scale))
	}
	if mantissa == nil {
		return Fixed{}
	}
	m := new(big.Int).Mul(mantissa, pow10(Scale-exponent))
	return newFixedUnsafe(m)
}

// NewFixedFromInt64 is like [NewFixed] but takes an int64 mantissa.
func NewFixedFromInt64(mantissa int64, exponent int) Fixed {
	return NewFixed(big.NewInt(mantissa), exponent)
}

// FixedFromDecimal converts a decimal to a number without loss of precision.
func FixedFromDecimal(d decimal.Decimal) Fixed {
	m := new(big.Int).SetUint64(d.Coef())
	if d.IsNeg() {
		m.Neg(m)
	}
	return NewFixed(m, d.Scale())
}

// ParseFixed converts a string to a number.
// The input string must be in one of the following formats:
//
//	1.234
//	-1234
//	+0.000001234
//	1.83e5
//	1.21E+22
//
// Digits beyond [Scale] fractional digits are truncated.
// ParseFixed returns an error wrapping [ErrParse] if the string is not
// a valid number.
func ParseFixed(s string) (Fixed, error) {
	f, err := parseFixed(s)
	if err != nil {
		return Fixed{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	return f, nil
}

func parseFixed(s string) (Fixed, error) {
	// Exponent
	coef, exp := s, 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		coef = s[:i]
		e, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return Fixed{}, fmt.Errorf("%w: invalid exponent", ErrParse)
		}
		if e > maxExponent || e < -maxExponent {
			return Fixed{}, fmt.Errorf("%w: exponent out of range", ErrParse)
		}
		exp = e
	}

	// Coefficient
	neg, whole, frac, err := splitDecimal(coef)
	if err != nil {
		return Fixed{}, err
	}
	m, _ := new(big.Int).SetString(whole+frac, 10)
	if neg {
		m.Neg(m)
	}

	// Scale
	scale := len(frac) - exp
	if scale > Scale {
		m.Quo(m, pow10(scale-Scale))
		scale = Scale
	}
	return NewFixed(m, scale), nil
}

// MustParseFixed is like [ParseFixed] but panics if the string cannot be parsed.
// It simplifies safe initialization of global variables holding numbers.
func MustParseFixed(s string) Fixed {
	f, err := ParseFixed(s)
	if err != nil {
		panic(fmt.Sprintf("ParseFixed(%q) failed: %v", s, err))
	}
	return f
}

// splitDecimal splits a plain decimal literal into its sign, integer digits
// and fractional digits.
// Either digit group may be empty, but not both.
func splitDecimal(s string) (neg bool, whole, frac string, err error) {
	if s == "" {
		return false, "", "", fmt.Errorf("%w: empty string", ErrParse)
	}
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	whole, frac, _ = strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return false, "", "", fmt.Errorf("%w: no digits", ErrParse)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return false, "", "", fmt.Errorf("%w: unexpected character", ErrParse)
	}
	return neg, whole, frac, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Sign returns:
//
//	-1 if f < 0
//	 0 if f = 0
//	+1 if f > 0
func (f Fixed) Sign() int {
	return f.coef().Sign()
}

// IsZero returns:
//
//	true  if f = 0
//	false otherwise
func (f Fixed) IsZero() bool {
	return f.Sign() == 0
}

// Cmp compares numbers and returns:
//
//	-1 if f < g
//	 0 if f = g
//	+1 if f > g
func (f Fixed) Cmp(g Fixed) int {
	return f.coef().Cmp(g.coef())
}

// Neg returns a number with the opposite sign.
func (f Fixed) Neg() Fixed {
	return newFixedUnsafe(new(big.Int).Neg(f.coef()))
}

// Abs returns the absolute value of the number.
func (f Fixed) Abs() Fixed {
	return newFixedUnsafe(new(big.Int).Abs(f.coef()))
}

// Add returns the exact sum of numbers f and g.
func (f Fixed) Add(g Fixed) Fixed {
	return newFixedUnsafe(new(big.Int).Add(f.coef(), g.coef()))
}

// Sub returns the exact difference between numbers f and g.
func (f Fixed) Sub(g Fixed) Fixed {
	return newFixedUnsafe(new(big.Int).Sub(f.coef(), g.coef()))
}

// Mul returns the product of numbers f and g truncated to [Scale] digits
// after the decimal point using [rounding toward zero].
//
// [rounding toward zero]: https://en.wikipedia.org/wiki/Rounding#Rounding_toward_zero
func (f Fixed) Mul(g Fixed) Fixed {
	m := new(big.Int).Mul(f.coef(), g.coef())
	m.Quo(m, scaleFactor)
	return newFixedUnsafe(m)
}

// Quo returns the quotient of numbers f and g truncated to [Scale] digits
// after the decimal point using [rounding toward zero].
//
// Quo returns an error wrapping [ErrDivideByZero] if the divisor is zero.
//
// [rounding toward zero]: https://en.wikipedia.org/wiki/Rounding#Rounding_toward_zero
func (f Fixed) Quo(g Fixed) (Fixed, error) {
	if g.IsZero() {
		return Fixed{}, fmt.Errorf("computing [%v / %v]: %w", f, g, ErrDivideByZero)
	}
	m := new(big.Int).Mul(f.coef(), scaleFactor)
	m.Quo(m, g.coef())
	return newFixedUnsafe(m), nil
}

// Unscale returns the number multiplied by 10^exponent and truncated to an
// integer using [rounding toward zero].
// For an asset with 8 decimals, Unscale(8) returns the amount in atomic units.
//
// Unscale panics if exponent is greater than [Scale].
//
// [rounding toward zero]: https://en.wikipedia.org/wiki/Rounding#Rounding_toward_zero
func (f Fixed) Unscale(exponent int) *big.Int {
	if exponent > Scale {
		panic(fmt.Sprintf("%v.Unscale(%v) failed: exponent exceeds scale %v", f, exponent, Scale))
	}
	return new(big.Int).Quo(f.coef(), pow10(Scale-exponent))
}

// parts returns the sign, integer digits and exactly scale fractional digits
// of the number truncated toward zero.
func (f Fixed) parts(scale int) (neg bool, whole, frac string) {
	m := f.Unscale(scale)
	neg = m.Sign() < 0
	s := m.Abs(m).String()
	if scale <= 0 {
		return neg, s, ""
	}
	if len(s) <= scale {
		s = strings.Repeat("0", scale-len(s)+1) + s
	}
	return neg, s[:len(s)-scale], s[len(s)-scale:]
}

// String implements the [fmt.Stringer] interface and returns a string
// representation of the number without scientific notation and without
// trailing zeros after the decimal point.
// See also methods [Fixed.Format] and [Fixed.ToFormat].
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (f Fixed) String() string {
	neg, whole, frac := f.parts(Scale)
	frac = strings.TrimRight(frac, "0")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(whole)
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// Format implements the [fmt.Formatter] interface.
// The following [format verbs] are available:
//
//	| Verb   | Example   | Description         |
//	| ------ | --------- | ------------------- |
//	| %s, %v | 5.678     | Number              |
//	| %q     | "5.678"   | Quoted number       |
//	| %f     | 5.678     | Number              |
//	| %.2f   | 5.67      | Truncated number    |
//
// The '-' format flag can be used with all verbs.
// The '+', ' ', '0' format flags can be used with all verbs.
//
// Precision is only supported for the %f verb and truncates the number.
// The default precision is the smallest one that represents the number exactly.
//
// [format verbs]: https://pkg.go.dev/fmt#hdr-Printing
// [fmt.Formatter]: https://pkg.go.dev/fmt#Formatter
func (f Fixed) Format(state fmt.State, verb rune) {
	// Rescaling
	var neg bool
	var whole, frac string
	tzeros := 0
	switch p, ok := state.Precision(); {
	case ok && (verb == 'f' || verb == 'F'):
		if p > Scale {
			tzeros = p - Scale
			p = Scale
		}
		neg, whole, frac = f.parts(p)
	default:
		neg, whole, frac = f.parts(Scale)
		frac = strings.TrimRight(frac, "0")
	}

	// Decimal point
	dpoint := 0
	if len(frac) > 0 || tzeros > 0 {
		dpoint = 1
	}

	// Arithmetic sign
	rsign := 0
	if neg || state.Flag('+') || state.Flag(' ') {
		rsign = 1
	}

	// Opening and closing quotes
	lquote, tquote := 0, 0
	if verb == 'q' || verb == 'Q' {
		lquote, tquote = 1, 1
	}

	// Calculating padding
	width := lquote + rsign + len(whole) + dpoint + len(frac) + tzeros + tquote
	lspaces, lzeros, tspaces := 0, 0, 0
	if w, ok := state.Width(); ok && w > width {
		switch {
		case state.Flag('-'):
			tspaces = w - width
		case state.Flag('0'):
			lzeros = w - width
		default:
			lspaces = w - width
		}
		width = w
	}

	buf := make([]byte, 0, width)

	// Leading spaces
	for range lspaces {
		buf = append(buf, ' ')
	}

	// Opening quote
	if lquote > 0 {
		buf = append(buf, '"')
	}

	// Arithmetic sign
	if rsign > 0 {
		switch {
		case neg:
			buf = append(buf, '-')
		case state.Flag(' '):
			buf = append(buf, ' ')
		default:
			buf = append(buf, '+')
		}
	}

	// Leading zeros
	for range lzeros {
		buf = append(buf, '0')
	}

	// Integer and fractional digits
	buf = append(buf, whole...)
	if dpoint > 0 {
		buf = append(buf, '.')
	}
	buf = append(buf, frac...)

	// Trailing zeros
	for range tzeros {
		buf = append(buf, '0')
	}

	// Closing quote
	if tquote > 0 {
		buf = append(buf, '"')
	}

	// Trailing spaces
	for range tspaces {
		buf = append(buf, ' ')
	}

	// Writing result
	//nolint:errcheck
	switch verb {
	case 'q', 'Q', 's', 'S', 'v', 'V', 'f', 'F':
		state.Write(buf)
	default:
		state.Write([]byte("%!"))
		state.Write([]byte{byte(verb)})
		state.Write([]byte("(fxswap.Fixed="))
		state.Write(buf)
		state.Write([]byte(")"))
	}
}

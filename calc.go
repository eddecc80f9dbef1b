package fxswap

import (
	"fmt"
	"math/big"
)

// MaxFeeBps is the largest fee rate accepted by [NewCalculator], i.e. 100%.
const MaxFeeBps = 10000

// Direction tells which side of a conversion is given.
type Direction int8

const (
	// Forward converts a given input amount of asset A into an output amount of asset B.
	Forward Direction = iota
	// Backward finds the input amount of asset A that yields a desired output amount of asset B.
	Backward
)

// String implements the [fmt.Stringer] interface.
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("Direction(%d)", int8(d))
	}
}

// Breakdown describes the fee of a single conversion.
// Amounts are in atomic units of asset B.
type Breakdown struct {
	FeeBps int64    // fee rate in basis points
	Fee    *big.Int // fee amount
	PreFee *big.Int // output before the fee is added
}

// Clone returns a deep copy of the breakdown.
func (b Breakdown) Clone() Breakdown {
	c := Breakdown{FeeBps: b.FeeBps}
	if b.Fee != nil {
		c.Fee = new(big.Int).Set(b.Fee)
	}
	if b.PreFee != nil {
		c.PreFee = new(big.Int).Set(b.PreFee)
	}
	return c
}

// Calculator performs fee-aware conversions between two assets.
// The fee is a percentage of the gross converted output and is added on top of it.
// Calculator is immutable and designed to be safe for concurrent use by
// multiple goroutines.
type Calculator struct {
	feeBps int64
	fee    Fixed // feeBps / 10000
}

// NewCalculator returns a calculator charging the given fee in basis points.
//
// NewCalculator returns an error if the fee is not within the range [0, MaxFeeBps].
func NewCalculator(feeBps int64) (*Calculator, error) {
	if feeBps < 0 || feeBps > MaxFeeBps {
		return nil, fmt.Errorf("fee must be in range [0, %v] basis points, got %v", MaxFeeBps, feeBps)
	}
	return &Calculator{feeBps: feeBps, fee: NewFixedFromInt64(feeBps, 4)}, nil
}

// MustNewCalculator is like [NewCalculator] but panics if the fee is out of range.
func MustNewCalculator(feeBps int64) *Calculator {
	c, err := NewCalculator(feeBps)
	if err != nil {
		panic(fmt.Sprintf("NewCalculator(%v) failed: %v", feeBps, err))
	}
	return c
}

// FeeBps returns the fee rate in basis points.
func (c *Calculator) FeeBps() int64 {
	return c.feeBps
}

// Convert dispatches to [Calculator.Forward] or [Calculator.Backward].
// For [Forward] the amount is in atomic units of asset a and the result in
// atomic units of asset b; for [Backward] it is the other way around.
func (c *Calculator) Convert(dir Direction, a, b Asset, q Quote, amount *big.Int) (*big.Int, Breakdown, error) {
	switch dir {
	case Forward:
		return c.Forward(a, b, q, amount)
	case Backward:
		return c.Backward(a, b, q, amount)
	default:
		return nil, Breakdown{}, fmt.Errorf("converting %v/%v: unknown direction %v", a, b, dir)
	}
}

// Forward returns the amount of asset b, in atomic units, obtained for the
// given input amount of asset a, together with its fee breakdown:
//
//	preFee = input * rate
//	fee    = preFee * feeBps / 10000
//	output = preFee + fee
//
// Output and fee are truncated to the decimals of asset b.
func (c *Calculator) Forward(a, b Asset, q Quote, input *big.Int) (*big.Int, Breakdown, error) {
	rate, err := q.CrossRate(a, b)
	if err != nil {
		return nil, Breakdown{}, fmt.Errorf("converting %v %v to %v: %w", FormatAtomic(input, a.Decimals()), a, b, err)
	}
	preFee := NewFixed(input, a.Decimals()).Mul(rate)
	fee := preFee.Mul(c.fee)
	total := preFee.Add(fee)
	bd := Breakdown{
		FeeBps: c.feeBps,
		Fee:    fee.Unscale(b.Decimals()),
		PreFee: preFee.Unscale(b.Decimals()),
	}
	return total.Unscale(b.Decimals()), bd, nil
}

// Backward returns the amount of asset a, in atomic units, required to obtain
// the given output amount of asset b, together with its fee breakdown.
// It is the algebraic inverse of [Calculator.Forward]:
//
//	preFee = output / (1 + feeBps / 10000)
//	fee    = output - preFee
//	input  = preFee / rate
//
// Input is truncated to the decimals of asset a, fee to the decimals of asset b.
func (c *Calculator) Backward(a, b Asset, q Quote, output *big.Int) (*big.Int, Breakdown, error) {
	rate, err := q.CrossRate(a, b)
	if err != nil {
		return nil, Breakdown{}, fmt.Errorf("converting %v to %v %v: %w", a, FormatAtomic(output, b.Decimals()), b, err)
	}
	total := NewFixed(output, b.Decimals())
	preFee, err := total.Quo(fixedOne.Add(c.fee))
	if err != nil {
		return nil, Breakdown{}, fmt.Errorf("converting %v to %v %v: %w", a, total, b, err)
	}
	fee := total.Sub(preFee)
	input, err := preFee.Quo(rate)
	if err != nil {
		return nil, Breakdown{}, fmt.Errorf("converting %v to %v %v: %w", a, total, b, err)
	}
	bd := Breakdown{
		FeeBps: c.feeBps,
		Fee:    fee.Unscale(b.Decimals()),
		PreFee: preFee.Unscale(b.Decimals()),
	}
	return input.Unscale(a.Decimals()), bd, nil
}

/*
Package fxswap implements exact, fee-inclusive conversions between two value
units, such as tokens or currencies, in either direction.
It combines an arbitrary-precision fixed-point [Fixed] type with a
[Calculator] that answers both "given input, what output" and
"given desired output, what input".

# Features

  - Immutable values, ensuring safe usage across multiple goroutines
  - Exact arithmetic at a single internal scale of 33 decimal digits
  - Explicit, caller-controlled truncation to atomic units
  - Conversion between atomic integer amounts and human decimal strings
  - Pool-style (reserve ratio) and scalar exchange rate quotes
  - Locale-aware formatting of numbers

# Representation

A [Fixed] value is a big integer mantissa divided by 10^[Scale].
Every value uses the same scale, so addition and subtraction are exact and
multiplication and division never need to reconcile scales.
An [Asset] pairs an id with a number of decimals that defines the size of its
atomic unit; amounts passed to and returned from the [Calculator] are always
big integers counted in atomic units.

# Truncation

[Fixed.Mul] and [Fixed.Quo] truncate toward zero at [Scale] digits.
[Fixed.Unscale] is the only place where precision is intentionally discarded:
it truncates toward zero to the requested number of decimals.
[ParseAtomic] silently drops fractional digits beyond an asset's decimals,
matching ledger truncation semantics.

# Fees

The fee is expressed in basis points and charged as a percentage of the gross
converted output, added on top of it.
[Calculator.Backward] is the algebraic inverse of [Calculator.Forward];
applying one after the other differs from the original amount by at most one
atomic unit whenever an atomic unit of the output asset is worth no more than
an atomic unit of the input asset.

# Errors

Malformed strings produce errors wrapping [ErrParse], zero divisors, reserves
or rates produce [ErrDivideByZero], and assets missing from a registry or a
quote produce [ErrUnknownAsset].
Using an exponent larger than [Scale] is a programming error and panics.
*/
package fxswap

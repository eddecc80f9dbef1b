package fxswap

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/govalues/decimal"
)

// ErrRateFetch is returned when rates cannot be obtained for a pair of assets.
var ErrRateFetch = errors.New("rate fetch failed")

// Quote is the priced relationship between assets supplied by a rates provider.
// Quotes are request-scoped and immutable.
type Quote interface {
	// CrossRate returns how many units of asset b are obtained for one unit
	// of asset a, before fees.
	//
	// CrossRate returns an error wrapping [ErrUnknownAsset] if the quote does not
	// price one of the assets, or [ErrDivideByZero] if a reserve or rate is zero.
	CrossRate(a, b Asset) (Fixed, error)
}

// PairKey returns a key identifying the unordered pair of asset ids.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// PoolQuote prices assets by the ratio of their reserves in a liquidity pool.
// Reserves are amounts in atomic units keyed by asset id.
type PoolQuote struct {
	reserves map[string]*big.Int
}

// NewPoolQuote returns a pool quote with the given reserves.
// The reserves are copied.
//
// NewPoolQuote returns an error if a reserve is nil or negative.
func NewPoolQuote(reserves map[string]*big.Int) (PoolQuote, error) {
	q := PoolQuote{reserves: make(map[string]*big.Int, len(reserves))}
	for id, r := range reserves {
		if r == nil || r.Sign() < 0 {
			return PoolQuote{}, fmt.Errorf("pool reserve of %v must not be negative", id)
		}
		q.reserves[id] = new(big.Int).Set(r)
	}
	return q, nil
}

// MustNewPoolQuote is like [NewPoolQuote] but panics if the quote cannot be constructed.
func MustNewPoolQuote(reserves map[string]*big.Int) PoolQuote {
	q, err := NewPoolQuote(reserves)
	if err != nil {
		panic(fmt.Sprintf("NewPoolQuote(%v) failed: %v", reserves, err))
	}
	return q
}

// Reserve returns a copy of the reserve of the given asset id.
func (q PoolQuote) Reserve(id string) (*big.Int, bool) {
	r, ok := q.reserves[id]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(r), true
}

// CrossRate implements the [Quote] interface.
// The rate is reserve(b) / reserve(a), each reserve read at its asset's decimals.
func (q PoolQuote) CrossRate(a, b Asset) (Fixed, error) {
	ra, ok := q.reserves[a.ID()]
	if !ok {
		return Fixed{}, fmt.Errorf("pricing %v in pool [%v]: %w", a, q, ErrUnknownAsset)
	}
	rb, ok := q.reserves[b.ID()]
	if !ok {
		return Fixed{}, fmt.Errorf("pricing %v in pool [%v]: %w", b, q, ErrUnknownAsset)
	}
	pa := NewFixed(ra, a.Decimals())
	pb := NewFixed(rb, b.Decimals())
	if pb.IsZero() {
		return Fixed{}, fmt.Errorf("pricing %v/%v in pool [%v]: zero reserve: %w", a, b, q, ErrDivideByZero)
	}
	rate, err := pb.Quo(pa)
	if err != nil {
		return Fixed{}, fmt.Errorf("pricing %v/%v in pool [%v]: %w", a, b, q, err)
	}
	return rate, nil
}

// String implements the [fmt.Stringer] interface and returns the reserves
// ordered by asset id, for example "BTC:100000000 USD:3000000".
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (q PoolQuote) String() string {
	ids := make([]string, 0, len(q.reserves))
	for id := range q.reserves {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + ":" + q.reserves[id].String()
	}
	return strings.Join(parts, " ")
}

// ScalarQuote represents a unidirectional exchange rate between two assets.
// It can price the pair in both directions: converting from quote to base
// uses the inverse of the rate.
type ScalarQuote struct {
	base  string          // asset being exchanged
	quote string          // asset being obtained in exchange for the base asset
	rate  decimal.Decimal // how many units of quote asset are obtained for 1 unit of the base asset
}

// NewScalarQuote returns a new exchange rate between the base and quote assets.
//
// NewScalarQuote returns an error if:
//   - an asset id is empty;
//   - the rate is negative;
//   - base and quote are the same asset and the rate is not 1.
func NewScalarQuote(base, quote string, rate decimal.Decimal) (ScalarQuote, error) {
	if base == "" || quote == "" {
		return ScalarQuote{}, fmt.Errorf("asset ids must not be empty")
	}
	if rate.IsNeg() {
		return ScalarQuote{}, fmt.Errorf("exchange rate must not be negative")
	}
	if base == quote && !rate.IsOne() {
		return ScalarQuote{}, fmt.Errorf("exchange rate must be equal to 1")
	}
	return ScalarQuote{base: base, quote: quote, rate: rate}, nil
}

// ParseScalarQuote converts asset ids and a decimal string to an exchange rate.
// See also [decimal.Parse].
func ParseScalarQuote(base, quote, rate string) (ScalarQuote, error) {
	d, err := decimal.Parse(rate)
	if err != nil {
		return ScalarQuote{}, fmt.Errorf("rate parsing: %w: %w", ErrParse, err)
	}
	q, err := NewScalarQuote(base, quote, d)
	if err != nil {
		return ScalarQuote{}, fmt.Errorf("rate construction: %w", err)
	}
	return q, nil
}

// MustParseScalarQuote is like [ParseScalarQuote] but panics if any of the strings cannot be parsed.
// It simplifies safe initialization of global variables holding exchange rates.
func MustParseScalarQuote(base, quote, rate string) ScalarQuote {
	q, err := ParseScalarQuote(base, quote, rate)
	if err != nil {
		panic(fmt.Sprintf("ParseScalarQuote(%q, %q, %q) failed: %v", base, quote, rate, err))
	}
	return q
}

// Base returns the id of the asset being exchanged.
func (q ScalarQuote) Base() string {
	return q.base
}

// Quote returns the id of the asset obtained in exchange for the base asset.
func (q ScalarQuote) Quote() string {
	return q.quote
}

// Rate returns how many units of the quote asset are obtained for one unit
// of the base asset.
func (q ScalarQuote) Rate() decimal.Decimal {
	return q.rate
}

// CrossRate implements the [Quote] interface.
func (q ScalarQuote) CrossRate(a, b Asset) (Fixed, error) {
	var inverse bool
	switch {
	case a.ID() == q.base && b.ID() == q.quote:
	case a.ID() == q.quote && b.ID() == q.base:
		inverse = true
	default:
		return Fixed{}, fmt.Errorf("pricing %v/%v with [%v]: %w", a, b, q, ErrUnknownAsset)
	}
	rate := FixedFromDecimal(q.rate)
	if rate.IsZero() {
		return Fixed{}, fmt.Errorf("pricing %v/%v with [%v]: zero rate: %w", a, b, q, ErrDivideByZero)
	}
	if !inverse {
		return rate, nil
	}
	inv, err := fixedOne.Quo(rate)
	if err != nil {
		return Fixed{}, fmt.Errorf("pricing %v/%v with [%v]: %w", a, b, q, err)
	}
	return inv, nil
}

// String implements the [fmt.Stringer] interface and returns a string
// representation of the exchange rate, for example "USD/EUR 1.2345".
//
// [fmt.Stringer]: https://pkg.go.dev/fmt#Stringer
func (q ScalarQuote) String() string {
	return q.base + "/" + q.quote + " " + q.rate.String()
}

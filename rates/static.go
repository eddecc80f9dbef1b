package rates

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/govalues/decimal"
	"github.com/govalues/fxswap"
)

// Pools is a static set of liquidity pools, one per unordered pair of assets.
// Pools is safe for concurrent use by multiple goroutines.
type Pools struct {
	mu    sync.RWMutex
	pools map[string]fxswap.PoolQuote
}

// NewPools returns an empty set of pools.
func NewPools() *Pools {
	return &Pools{pools: make(map[string]fxswap.PoolQuote)}
}

// Add sets the reserves, in atomic units, of the pool trading assets a and b.
// An existing pool for the same pair is replaced.
func (p *Pools) Add(a string, reserveA *big.Int, b string, reserveB *big.Int) error {
	if a == "" || b == "" || a == b {
		return fmt.Errorf("adding pool %q/%q: a pool needs two distinct assets", a, b)
	}
	q, err := fxswap.NewPoolQuote(map[string]*big.Int{a: reserveA, b: reserveB})
	if err != nil {
		return fmt.Errorf("adding pool %v/%v: %w", a, b, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pools[fxswap.PairKey(a, b)] = q
	return nil
}

// Pairs returns the keys of all pools ordered alphabetically.
// See also [fxswap.PairKey].
func (p *Pools) Pairs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.pools))
	for k := range p.pools {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fetch implements the [Provider] interface.
func (p *Pools) Fetch(ctx context.Context, a, b fxswap.Asset) (fxswap.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching pool %v/%v: %w: %w", a, b, fxswap.ErrRateFetch, err)
	}
	p.mu.RLock()
	q, ok := p.pools[fxswap.PairKey(a.ID(), b.ID())]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("fetching pool %v/%v: no such pool: %w", a, b, fxswap.ErrRateFetch)
	}
	return q, nil
}

// Table is a static table of scalar exchange rates, one per unordered pair
// of assets.
// A rate set for base/quote also prices quote/base through its inverse.
// Table is safe for concurrent use by multiple goroutines.
type Table struct {
	mu    sync.RWMutex
	rates map[string]fxswap.ScalarQuote
}

// NewTable returns an empty rate table.
func NewTable() *Table {
	return &Table{rates: make(map[string]fxswap.ScalarQuote)}
}

// Set records how many units of the quote asset are obtained for one unit of
// the base asset.
// An existing rate for the same pair, in either direction, is replaced.
func (t *Table) Set(base, quote string, rate decimal.Decimal) error {
	q, err := fxswap.NewScalarQuote(base, quote, rate)
	if err != nil {
		return fmt.Errorf("setting rate %v/%v: %w", base, quote, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates[fxswap.PairKey(base, quote)] = q
	return nil
}

// Rate returns the quote recorded for the pair, in whichever direction it was set.
func (t *Table) Rate(a, b string) (fxswap.ScalarQuote, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	q, ok := t.rates[fxswap.PairKey(a, b)]
	return q, ok
}

// Fetch implements the [Provider] interface.
func (t *Table) Fetch(ctx context.Context, a, b fxswap.Asset) (fxswap.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching rate %v/%v: %w: %w", a, b, fxswap.ErrRateFetch, err)
	}
	q, ok := t.Rate(a.ID(), b.ID())
	if !ok {
		return nil, fmt.Errorf("fetching rate %v/%v: no such rate: %w", a, b, fxswap.ErrRateFetch)
	}
	return q, nil
}

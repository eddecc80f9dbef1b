// Package rates provides sources of exchange rate quotes for the swap engine.
//
// [Pools] and [Table] hold static quotes configured up front, [Cache] wraps
// another provider with a time-to-live, and [Chain] consults several
// providers in order.
// Providers never retry; retry and backoff belong to the caller.
package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/govalues/fxswap"
)

// Provider fetches a quote pricing a pair of assets.
type Provider interface {
	Fetch(ctx context.Context, a, b fxswap.Asset) (fxswap.Quote, error)
}

// ProviderFunc adapts an ordinary function to the [Provider] interface.
type ProviderFunc func(ctx context.Context, a, b fxswap.Asset) (fxswap.Quote, error)

// Fetch calls f(ctx, a, b).
func (f ProviderFunc) Fetch(ctx context.Context, a, b fxswap.Asset) (fxswap.Quote, error) {
	return f(ctx, a, b)
}

// Chain consults its providers in order and returns the first quote obtained.
type Chain []Provider

// Fetch implements the [Provider] interface.
// If every provider fails, the returned error wraps [fxswap.ErrRateFetch]
// and the errors of all providers.
func (c Chain) Fetch(ctx context.Context, a, b fxswap.Asset) (fxswap.Quote, error) {
	errs := make([]error, 0, len(c))
	for _, p := range c {
		q, err := p.Fetch(ctx, a, b)
		if err == nil && q != nil {
			return q, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("fetching %v/%v: no quote: %w", a, b, fxswap.ErrRateFetch)
	}
	return nil, fmt.Errorf("fetching %v/%v: %w: %w", a, b, fxswap.ErrRateFetch, errors.Join(errs...))
}

package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/govalues/fxswap"
)

const (
	// DefaultTTL is how long a [Cache] keeps a quote unless told otherwise.
	DefaultTTL = 10 * time.Minute
	// DefaultFetchTimeout bounds a single call to the provider behind a [Cache].
	DefaultFetchTimeout = 30 * time.Second
)

// Cache remembers the quotes of another provider for a fixed time.
// Quotes are keyed by the unordered pair of asset ids.
// Concurrent fetches of the same pair share a single call to the underlying
// provider. That call is not cancelled when one of its callers gives up, so
// engines sharing a cache do not fail each other.
// Failures are not cached.
type Cache struct {
	next    Provider
	timeout time.Duration
	log     *zap.Logger
	items   *cache.Cache
	group   singleflight.Group
}

// CacheOption configures a [Cache].
type CacheOption func(*Cache)

// WithLogger sets the logger used to report cache misses.
func WithLogger(log *zap.Logger) CacheOption {
	return func(c *Cache) {
		c.log = log
	}
}

// WithFetchTimeout bounds a single call to the underlying provider.
// Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewCache returns a cache in front of next.
// A non-positive ttl selects [DefaultTTL].
// Expired quotes are dropped when they are looked up.
func NewCache(next Provider, ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		next:    next,
		timeout: DefaultFetchTimeout,
		log:     zap.NewNop(),
		items:   cache.New(ttl, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("rates")
	return c
}

// Fetch implements the [Provider] interface.
// It returns as soon as ctx is done, even if the shared call is still running.
func (c *Cache) Fetch(ctx context.Context, a, b fxswap.Asset) (fxswap.Quote, error) {
	key := fxswap.PairKey(a.ID(), b.ID())
	if v, ok := c.items.Get(key); ok {
		return v.(fxswap.Quote), nil
	}
	ch := c.group.DoChan(key, func() (any, error) {
		return c.load(ctx, key, a, b)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetching %v/%v: %w: %w", a, b, fxswap.ErrRateFetch, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			c.log.Debug("quote fetch failed", zap.String("pair", key), zap.Bool("shared", res.Shared), zap.Error(res.Err))
			return nil, res.Err
		}
		return res.Val.(fxswap.Quote), nil
	}
}

// load calls the underlying provider detached from the cancellation of ctx.
func (c *Cache) load(ctx context.Context, key string, a, b fxswap.Asset) (fxswap.Quote, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()
	c.log.Debug("fetching quote", zap.String("pair", key))
	q, err := c.next.Fetch(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("fetching %v/%v: no quote: %w", a, b, fxswap.ErrRateFetch)
	}
	c.items.SetDefault(key, q)
	return q, nil
}

// Invalidate forgets the quote held for the pair of asset ids, if any.
func (c *Cache) Invalidate(a, b string) {
	c.items.Delete(fxswap.PairKey(a, b))
}

// Purge forgets all quotes.
func (c *Cache) Purge() {
	c.items.Flush()
}

// Len returns the number of quotes held, including expired ones not yet evicted.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

package datasource

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ta/internal/cache"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"golang.org/x/sync/singleflight"
)

// CachedDataSource wraps a DataSource and memoizes successful LoadSeries
// results by symbol and range. Entries expire after the TTL and the number of
// entries is bounded. Series are immutable so cached values are shared.
type CachedDataSource struct {
	underlying DataSource
	series     *cache.Store[types.Series]
	inflight   singleflight.Group
}

// NewCachedDataSource creates a new CachedDataSource wrapping the given DataSource.
// A zero ttl disables expiry and a zero maxEntries disables the bound.
func NewCachedDataSource(underlying DataSource, ttl time.Duration, maxEntries int, opts ...cache.Option) *CachedDataSource {
	return &CachedDataSource{
		underlying: underlying,
		series:     cache.NewStore[types.Series](ttl, maxEntries, opts...),
		inflight:   singleflight.Group{},
	}
}

// ClearCache drops every memoized series.
func (c *CachedDataSource) ClearCache() {
	c.series.Reset()
}

// Len returns the number of memoized series.
func (c *CachedDataSource) Len() int {
	return c.series.Len()
}

// Initialize implements DataSource. Attaching a new file clears the cache.
func (c *CachedDataSource) Initialize(path string) error {
	c.ClearCache()

	return c.underlying.Initialize(path)
}

// LoadSeries implements DataSource with caching. Errors are returned to
// every waiting caller but never stored.
func (c *CachedDataSource) LoadSeries(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.Series, error) {
	key := buildSeriesKey(symbol, start, end)

	if cached := c.series.Get(key); cached.IsSome() {
		return cached.Unwrap(), nil
	}

	result, err, _ := c.inflight.Do(key, func() (any, error) {
		series, err := c.underlying.LoadSeries(symbol, start, end)
		if err != nil {
			return types.Series{}, err
		}

		c.series.Set(key, series)

		return series, nil
	})
	if err != nil {
		return types.Series{}, err
	}

	return result.(types.Series), nil
}

// ListSymbols implements DataSource.
func (c *CachedDataSource) ListSymbols() ([]string, error) {
	return c.underlying.ListSymbols()
}

// Count implements DataSource.
func (c *CachedDataSource) Count(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	return c.underlying.Count(symbol, start, end)
}

// Close implements DataSource.
func (c *CachedDataSource) Close() error {
	return c.underlying.Close()
}

func buildSeriesKey(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) string {
	bound := func(t optional.Option[time.Time]) string {
		if t.IsNone() {
			return "none"
		}

		return fmt.Sprintf("%d", t.Unwrap().UnixNano())
	}

	return fmt.Sprintf("series:%s:%s:%s", symbol, bound(start), bound(end))
}

package cache

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ta/internal/types"
)

// Cache memoizes computed indicator tables by request fingerprint.
type Cache interface {
	Get(key string) optional.Option[*types.IndicatorTable]
	Set(key string, table *types.IndicatorTable)
	Len() int
	Reset()
}

// CacheV1 is a Store of indicator tables.
type CacheV1 struct {
	store *Store[*types.IndicatorTable]
}

func NewCacheV1(ttl time.Duration, maxEntries int, opts ...Option) Cache {
	return &CacheV1{store: NewStore[*types.IndicatorTable](ttl, maxEntries, opts...)}
}

// Get returns the table stored under key unless it has expired.
func (c *CacheV1) Get(key string) optional.Option[*types.IndicatorTable] {
	return c.store.Get(key)
}

// Set stores table under key. Callers must not mutate table afterwards.
func (c *CacheV1) Set(key string, table *types.IndicatorTable) {
	c.store.Set(key, table)
}

// Len returns the number of unexpired entries.
func (c *CacheV1) Len() int {
	return c.store.Len()
}

// Reset implements Cache.
func (c *CacheV1) Reset() {
	c.store.Reset()
}

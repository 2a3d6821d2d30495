package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/orwee/liduido/internal/pool"
)

// Cached memoizes the last successful load for a fixed window. Invalidate
// clears the cached table and its timestamp so the next access refetches.
// Errors are never cached; a failed refresh leaves the cache empty.
type Cached struct {
	store Store
	ttl   time.Duration

	mu        sync.RWMutex
	records   []pool.Record
	fetchedAt time.Time

	group  singleflight.Group
	logger *zap.Logger
}

func NewCached(s Store, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{
		store:  s,
		ttl:    ttl,
		logger: logger.Named("pool-cache"),
	}
}

// LoadPools returns the cached table while it is fresh, otherwise fetches
// from the underlying store. Concurrent calls during a refresh collapse to
// a single upstream fetch. The returned slice is a copy; mutating it does
// not touch the cache.
func (c *Cached) LoadPools(ctx context.Context) ([]pool.Record, error) {
	c.mu.RLock()
	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl {
		records := snapshot(c.records)
		c.mu.RUnlock()
		return records, nil
	}
	c.mu.RUnlock()

	v, err, shared := c.group.Do("pools", func() (interface{}, error) {
		records, err := c.store.LoadPools(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.records = records
		c.fetchedAt = time.Now()
		c.mu.Unlock()

		return records, nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		c.logger.Debug("coalesced concurrent pool fetch")
	}
	return snapshot(v.([]pool.Record)), nil
}

// Invalidate drops the cached table. The next LoadPools refetches.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.records = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()

	c.logger.Debug("pool cache invalidated")
}

// Age reports how long ago the cached table was fetched, and whether a
// cached table exists at all.
func (c *Cached) Age() (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetchedAt.IsZero() {
		return 0, false
	}
	return time.Since(c.fetchedAt), true
}

func (c *Cached) Close() {
	c.store.Close()
}

func snapshot(records []pool.Record) []pool.Record {
	out := make([]pool.Record, len(records))
	copy(out, records)
	return out
}

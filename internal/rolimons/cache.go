package rolimons

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"limited-flipper/internal/logger"
)

// DefaultTTL is how long a feed snapshot stays fresh.
const DefaultTTL = 5 * time.Minute

// FeedFunc fetches a full reference snapshot.
type FeedFunc func(ctx context.Context) (map[int64]CatalogItem, error)

// Cache amortizes bulk feed fetches across scans within a TTL window.
// Snapshots are immutable once published and swapped atomically; a failed
// refresh is never cached, so the next caller retries immediately.
// Concurrent refreshes for the same window collapse via singleflight.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time
	fetch FeedFunc

	mu        sync.RWMutex
	snapshot  map[int64]CatalogItem
	fetchedAt time.Time

	group singleflight.Group
}

// NewCache creates a cache around the given feed fetcher with the default TTL.
func NewCache(fetch FeedFunc) *Cache {
	return &Cache{
		ttl:   DefaultTTL,
		now:   time.Now,
		fetch: fetch,
	}
}

// Get returns the current snapshot, refreshing synchronously if it is absent
// or older than the TTL. Callers must treat the returned map as read-only.
func (c *Cache) Get(ctx context.Context) (map[int64]CatalogItem, error) {
	if snap, ok := c.fresh(); ok {
		return snap, nil
	}

	result, err, _ := c.group.Do("itemdetails", func() (interface{}, error) {
		// Another caller may have refreshed while we queued on the group.
		if snap, ok := c.fresh(); ok {
			return snap, nil
		}
		snap, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.snapshot = snap
		c.fetchedAt = c.now()
		c.mu.Unlock()
		logger.Info("Feed", fmt.Sprintf("Refreshed reference feed (%d items)", len(snap)))
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[int64]CatalogItem), nil
}

// Age returns how old the current snapshot is, or false when empty.
func (c *Cache) Age() (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return 0, false
	}
	return c.now().Sub(c.fetchedAt), true
}

func (c *Cache) fresh() (map[int64]CatalogItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return nil, false
	}
	if c.now().Sub(c.fetchedAt) > c.ttl {
		return nil, false
	}
	return c.snapshot, true
}

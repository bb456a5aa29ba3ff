package store

import (
	"context"
	"fmt"

	"github.com/couchcryptid/wildlife-health-watch/internal/domain"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the records for one snapshot source.
type LoadFunc func(ctx context.Context) ([]domain.CaseRecord, error)

// Cache memoizes stores by source key for the life of the process. Entries
// never expire; concurrent first loads of a key share one call to the loader,
// and failed loads are not remembered.
type Cache struct {
	items *cache.Cache
	group singleflight.Group
}

// NewCache returns an empty cache. It starts no background goroutines.
func NewCache() *Cache {
	return &Cache{items: cache.New(cache.NoExpiration, 0)}
}

// Get returns the store for key, calling load the first time the key is seen.
// The shared load keeps the values of ctx but not its cancellation, so one
// caller going away does not fail the others waiting on the same key. Each
// caller still returns as soon as its own ctx is done.
func (c *Cache) Get(ctx context.Context, key string, load LoadFunc) (*Store, error) {
	if s, ok := c.Peek(key); ok {
		return s, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if s, ok := c.Peek(key); ok {
			return s, nil
		}
		records, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		s := New(records)
		c.items.Set(key, s, cache.NoExpiration)
		return s, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", key, res.Err)
		}
		return res.Val.(*Store), nil
	}
}

// Peek returns the cached store for key without loading it.
func (c *Cache) Peek(key string) (*Store, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Store), true
}

// Len reports how many snapshots are cached.
func (c *Cache) Len() int { return c.items.ItemCount() }

// Package cache provides a bounded in-memory LRU used to memoize
// summarization calls by exact prompt text.
package cache

import (
	"container/list"
	"sync"

	"golang.org/x/sync/singleflight"
)

// LRU is a fixed-capacity string cache with least-recently-used eviction.
// It is safe for concurrent use; eviction and insertion bookkeeping are
// serialized under one mutex.
type LRU struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	group    singleflight.Group
}

type entry struct {
	key   string
	value string
}

// New creates an LRU holding at most capacity entries.
func New(capacity int) *LRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached value for key and marks it most recently used.
func (c *LRU) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Add inserts or refreshes a value, evicting the least-recently-used entry
// when the cache is already at capacity.
func (c *LRU) Add(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}
	c.entries[key] = c.order.PushFront(&entry{key: key, value: value})
}

// Len reports the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result. Concurrent callers with the same key share one computation, so
// at most one compute runs per distinct key at a time. A compute error is
// returned uncached and the next call with the same key retries. The hit
// result reports whether the value came from the cache without computing.
func (c *LRU) GetOrCompute(key string, compute func() (string, error)) (value string, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// Another caller may have filled the cache while we queued.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return "", err
		}
		c.Add(key, v)
		return v, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), shared, nil
}

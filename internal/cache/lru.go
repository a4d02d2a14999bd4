// Package cache provides the bounded in-memory cache shared by the
// pipeline: LRU eviction, optional time-based expiry, and a mutex so
// concurrent requests see atomic get/put.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a bounded LRU cache. With a non-zero ttl, entries older than
// ttl are removed on the next Get, even if they were recently used.
// Capacity eviction is independent of an entry's TTL state.
type Cache[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration // 0 = entries never expire
	items    map[string]*list.Element
	order    *list.List // most-recently-used at the back
	now      func() time.Time
}

type entry[V any] struct {
	key       string
	value     V
	timestamp time.Time
}

// New creates a cache with the given capacity. ttl of 0 disables expiry.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache[V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		now:      time.Now,
	}
}

// Get returns the value for key and marks it most-recently-used.
// An expired entry is removed and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	ent := el.Value.(*entry[V])
	if c.ttl > 0 && c.now().Sub(ent.timestamp) > c.ttl {
		c.order.Remove(el)
		delete(c.items, key)
		return zero, false
	}

	c.order.MoveToBack(el)
	return ent.value, true
}

// Put inserts or overwrites key with a fresh timestamp and marks it
// most-recently-used. When the cache exceeds capacity, the
// least-recently-used entry is evicted.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry[V])
		ent.value = value
		ent.timestamp = c.now()
		c.order.MoveToBack(el)
		return
	}

	el := c.order.PushBack(&entry[V]{key: key, value: value, timestamp: c.now()})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*entry[V]).key)
	}
}

// Len returns the number of entries, including not-yet-collected expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

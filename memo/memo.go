// Package memo provides fixed-capacity LRU memoization for pure
// functions keyed by content digests.
//
// Caches are not synchronized. The engine is single-threaded by
// contract; callers sharing a cache across goroutines must add their
// own locking.
package memo

import "container/list"

// Cache is a fixed-capacity LRU cache with hit/miss counters.
type Cache struct {
	capacity int
	ll       *list.List
	entries  map[string]*list.Element
	hits     uint64
	misses   uint64
}

type entry struct {
	key   string
	value interface{}
}

// Metrics reports cache effectiveness for tests and debugging.
type Metrics struct {
	Hits     uint64
	Misses   uint64
	Len      int
	Capacity int
}

// New creates a cache holding at most capacity entries.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the cached value for key, marking it most recently used.
func (c *Cache) Get(key string) (interface{}, bool) {
	if el, ok := c.entries[key]; ok {
		c.hits++
		c.ll.MoveToFront(el)
		return el.Value.(*entry).value, true
	}
	c.misses++
	return nil, false
}

// Put stores value under key, evicting the least recently used entry
// if the cache is full.
func (c *Cache) Put(key string, value interface{}) {
	if el, ok := c.entries[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*entry).value = value
		return
	}
	el := c.ll.PushFront(&entry{key: key, value: value})
	c.entries[key] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.entries, oldest.Value.(*entry).key)
		}
	}
}

// GetOrCompute returns the cached value for key, computing and storing
// it on a miss.
func (c *Cache) GetOrCompute(key string, compute func() interface{}) interface{} {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Put(key, v)
	return v
}

// Metrics returns a snapshot of the cache counters.
func (c *Cache) Metrics() Metrics {
	return Metrics{
		Hits:     c.hits,
		Misses:   c.misses,
		Len:      c.ll.Len(),
		Capacity: c.capacity,
	}
}

// Reset drops all entries and zeroes the counters.
func (c *Cache) Reset() {
	c.ll.Init()
	c.entries = make(map[string]*list.Element)
	c.hits = 0
	c.misses = 0
}

// Package l2 implements the engine's in-process memory tile cache: a true
// LRU keyed by tile identity (SPEC_FULL.md §4.7).
//
// Grounded on internal/cog/tilecache.go's map + order-slice shape, but made
// into a genuine LRU (the teacher's TileCache is FIFO — it never moves an
// entry on Get) since spec §4.7 requires "on every get/put the access-order
// list is spliced to move the key to the MRU end". container/list gives
// O(1) move-to-front instead of re-slicing an order array by hand.
package l2

import (
	"container/list"
	"sync"

	"github.com/deepzoom/mandelcore/internal/cache"
)

type node struct {
	key   cache.Key
	entry *cache.Entry
}

// Cache is a concurrency-safe, fixed-capacity LRU of cache.Entry.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[cache.Key]*list.Element
	order    *list.List // front = MRU, back = LRU
}

// New returns an empty LRU with the given capacity (default 256 if <= 0).
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[cache.Key]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the entry for key and moves it to the MRU end, or nil if
// absent.
func (c *Cache) Get(key cache.Key) *cache.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil
	}
	c.order.MoveToFront(el)
	return el.Value.(*node).entry
}

// Put inserts or replaces the entry for key, moving it to the MRU end, and
// evicts the LRU entry if over capacity.
func (c *Cache) Put(key cache.Key, entry *cache.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*node).entry = entry
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&node{key: key, entry: entry})
	c.items[key] = el

	for len(c.items) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*node).key)
	}
}

// Delete removes key from the cache, if present.
func (c *Cache) Delete(key cache.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[cache.Key]*list.Element, c.capacity)
	c.order = list.New()
}

// Keys returns the cached keys ordered MRU-first, for test assertions.
func (c *Cache) Keys() []cache.Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]cache.Key, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*node).key)
	}
	return out
}

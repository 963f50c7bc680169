// Package l1 simulates the engine's GPU-resident texture cache: the
// fastest, smallest tier, holding a texture handle per tile plus the
// source metadata needed to evict it (SPEC_FULL.md §4.7). Actual texture
// upload is a host/windowing responsibility (out of scope, per spec's
// Non-goals on windowing); this package tracks handle lifetime only.
//
// Stylistically grounded on gioui.org/gpu/caches.go's generational
// resourceCache: entries touched during a frame are copied into a "next
// generation" map, and Sweep evicts anything left behind in the old
// generation. Not imported (gio is a full GPU/windowing toolkit, out of
// scope) — only the generational eviction idea is carried over, combined
// with an LRU capacity bound since spec §4.7 asks for both ("LRU; default
// capacity 64").
package l1

import (
	"container/list"
	"sync"

	"github.com/deepzoom/mandelcore/internal/cache"
)

// Handle is a placeholder for a GPU texture resource. A real host binds
// TextureID to its graphics backend; the core only tracks its lifetime.
type Handle struct {
	TextureID  uint64
	WidthPx    int
	UploadedAt int64 // ms
}

type node struct {
	key    cache.Key
	handle Handle
}

// Cache is an LRU of texture handles, bounded at a default capacity of 64.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[cache.Key]*list.Element
	order    *list.List
	nextID   uint64

	// generation tracks keys touched since the last Sweep, mirroring gio's
	// res/newRes split so a host can batch-evict once per composited frame
	// in addition to the continuous LRU bound.
	generation map[cache.Key]struct{}
}

// New returns an empty L1 cache with the given capacity (default 64).
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 64
	}
	return &Cache{
		capacity:   capacity,
		items:      make(map[cache.Key]*list.Element, capacity),
		order:      list.New(),
		generation: make(map[cache.Key]struct{}, capacity),
	}
}

// Get returns the handle for key, marking it touched this generation and
// moving it to the MRU end.
func (c *Cache) Get(key cache.Key) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return Handle{}, false
	}
	c.order.MoveToFront(el)
	c.generation[key] = struct{}{}
	return el.Value.(*node).handle, true
}

// Upload registers a texture handle for key sized by widthPx, returning
// it. If key already has a handle, that handle is marked used this
// generation and returned unchanged.
func (c *Cache) Upload(key cache.Key, widthPx int, nowMs int64) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		c.generation[key] = struct{}{}
		return el.Value.(*node).handle
	}

	c.nextID++
	h := Handle{TextureID: c.nextID, WidthPx: widthPx, UploadedAt: nowMs}
	el := c.order.PushFront(&node{key: key, handle: h})
	c.items[key] = el
	c.generation[key] = struct{}{}

	for len(c.items) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*node).key)
	}
	return h
}

// Sweep evicts every handle not touched (via Get or Upload) since the
// previous Sweep call — the generational half of the eviction policy,
// typically invoked once per composited frame.
func (c *Cache) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, el := range c.items {
		if _, touched := c.generation[key]; !touched {
			c.order.Remove(el)
			delete(c.items, key)
		}
	}
	c.generation = make(map[cache.Key]struct{}, c.capacity)
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes every handle.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[cache.Key]*list.Element, c.capacity)
	c.order = list.New()
	c.generation = make(map[cache.Key]struct{}, c.capacity)
}

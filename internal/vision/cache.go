package vision

import (
	"container/list"
	"image"
	"sync"
)

// templateCacheCap bounds how many decoded templates stay in memory.
const templateCacheCap = 32

// templateCache is an LRU of decoded grayscale templates keyed by
// resolved file path. A hit refreshes recency; inserting past capacity
// evicts the least recently used entry.
type templateCache struct {
	mu      sync.Mutex
	cap     int
	order   *list.List // front = most recent
	entries map[string]*list.Element
}

type cacheEntry struct {
	key string
	img *image.Gray
}

func newTemplateCache(capacity int) *templateCache {
	if capacity < 1 {
		capacity = 1
	}
	return &templateCache{
		cap:     capacity,
		order:   list.New(),
		entries: make(map[string]*list.Element, capacity),
	}
}

func (c *templateCache) get(key string) (*image.Gray, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).img, true
}

func (c *templateCache) put(key string, img *image.Gray) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).img = img
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, img: img})
	for c.order.Len() > c.cap {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *templateCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

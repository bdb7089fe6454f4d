package dashboard

import (
	"sync"

	"github.com/couchcryptid/brazil-fires-dashboard/internal/observability"
)

// CachedController wraps an Updater with an in-memory LRU cache of figures.
type CachedController struct {
	inner   Updater
	cache   *lruCache[cacheKey, Figures]
	metrics *observability.Metrics
}

type cacheKey struct {
	year  int
	state string
	one   bool
}

// NewCachedController creates a cache decorator holding at most maxEntries figure sets.
func NewCachedController(inner Updater, maxEntries int, metrics *observability.Metrics) *CachedController {
	return &CachedController{
		inner:   inner,
		cache:   newLRUCache[cacheKey, Figures](maxEntries),
		metrics: metrics,
	}
}

// Update returns cached figures when present. The year is not part of the
// key for AllStates since those figures do not depend on it.
func (c *CachedController) Update(year int, sel Selection) Figures {
	key := cacheKey{state: sel.state, one: sel.one}
	if sel.one {
		key.year = year
	}
	if figs, ok := c.cache.get(key); ok {
		c.metrics.ChartCache.WithLabelValues("hit").Inc()
		return figs
	}
	c.metrics.ChartCache.WithLabelValues("miss").Inc()

	figs := c.inner.Update(year, sel)
	c.cache.put(key, figs)
	return figs
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[K comparable, V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[K]*entry[K, V]
	head       *entry[K, V] // most recently used
	tail       *entry[K, V] // least recently used
}

type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

func newLRUCache[K comparable, V any](maxEntries int) *lruCache[K, V] {
	return &lruCache[K, V]{
		maxEntries: maxEntries,
		entries:    make(map[K]*entry[K, V]),
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[K, V]) moveToFront(e *entry[K, V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[K, V]) addToFront(e *entry[K, V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[K, V]) remove(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[K, V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}

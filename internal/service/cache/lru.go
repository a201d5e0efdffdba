package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/metrics"
)

type entry struct {
	key       string
	value     model.PricingResult
	expiresAt time.Time
}

// lru is one shard: a mutex-guarded LRU list whose entries also expire.
// The front of ll is the most recently used entry.
type lru struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	ll       *list.List
	items    map[string]*list.Element

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func newLRU(capacity int, ttl time.Duration, now func() time.Time) *lru {
	return &lru{
		capacity: capacity,
		ttl:      ttl,
		now:      now,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *lru) get(key string) (model.PricingResult, bool) {
	c.mu.Lock()
	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)
		metrics.RecordCacheOperation("get", "miss")
		return model.PricingResult{}, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.removeElement(el)
		c.mu.Unlock()
		c.misses.Add(1)
		metrics.RecordCacheOperation("get", "expired")
		return model.PricingResult{}, false
	}
	c.ll.MoveToFront(el)
	value := e.value
	c.mu.Unlock()

	c.hits.Add(1)
	metrics.RecordCacheOperation("get", "hit")
	return value, true
}

func (c *lru) set(key string, value model.PricingResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value, e.expiresAt = value, expiresAt
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	if c.ll.Len() > c.capacity {
		c.removeElement(c.ll.Back())
		c.evictions.Add(1)
		metrics.RecordCacheOperation("evict", "capacity")
	}
	metrics.RecordCacheOperation("set", "success")
}

func (c *lru) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// clear drops every entry and resets the counters.
func (c *lru) clear() {
	c.mu.Lock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	c.mu.Unlock()

	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// sweep drops expired entries and returns how many.
// Entries are not ordered by expiry, so the whole list is walked.
func (c *lru) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*entry).expiresAt) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// keys returns the keys from most to least recently used.
func (c *lru) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, c.ll.Len())
	for el := c.ll.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry).key)
	}
	return keys
}

func (c *lru) metrics() Metrics {
	c.mu.Lock()
	size := c.ll.Len()
	c.mu.Unlock()
	return Metrics{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      size,
		Capacity:  c.capacity,
	}
}

// removeElement unlinks el. Callers hold mu.
func (c *lru) removeElement(el *list.Element) {
	delete(c.items, el.Value.(*entry).key)
	c.ll.Remove(el)
}

package http

import (
	"strconv"
	"sync"

	"github.com/kokorev/ghcndaily/internal/domain"
)

func cacheKey(stationID, element string, includeFlags bool) string {
	return stationID + "|" + element + "|" + strconv.FormatBool(includeFlags)
}

// seriesCache is a thread-safe LRU cache of expanded daily series.
// Cached slices are shared between readers and must not be modified.
type seriesCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value []domain.DailyObservation
	prev  *entry
	next  *entry
}

// newSeriesCache creates a cache holding at most maxEntries series. A
// non-positive size disables caching.
func newSeriesCache(maxEntries int) *seriesCache {
	return &seriesCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *seriesCache) get(key string) ([]domain.DailyObservation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *seriesCache) put(key string, value []domain.DailyObservation) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *seriesCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *seriesCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *seriesCache) addToFront(e *entry) {
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

func (c *seriesCache) remove(e *entry) {
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

func (c *seriesCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}

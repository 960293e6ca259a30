package cache

import (
	"container/list"
	"sync"
	"time"
)

// MemoryCache is the L1 cache: an LRU of records bounded by payload bytes.
type MemoryCache struct {
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	mu    sync.Mutex
	stats CacheStats
}

type memoryEntry struct {
	key    string
	record Record
	size   int64
}

// NewMemoryCache creates a new memory cache with the specified capacity in bytes.
func NewMemoryCache(capacity int64) *MemoryCache {
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		stats:    CacheStats{Capacity: capacity},
	}
}

// Get returns the record for key and marks it most recently used.
func (c *MemoryCache) Get(key string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return Record{}, false
	}

	c.eviction.MoveToFront(elem)
	entry := elem.Value.(*memoryEntry)

	c.stats.Hits++
	c.stats.LastAccess = time.Now()
	return entry.record, true
}

// Put stores rec under key, evicting least recently used entries to make
// room. Overwriting a key replaces its record.
func (c *MemoryCache) Put(key string, rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// An overwrite always drops the previous record, even when the new one
	// does not fit.
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}

	recSize := rec.size()
	if recSize > c.capacity {
		return ErrItemTooLarge
	}

	for c.size+recSize > c.capacity && c.eviction.Len() > 0 {
		c.evictOldest()
	}

	entry := &memoryEntry{key: key, record: rec, size: recSize}
	c.items[key] = c.eviction.PushFront(entry)
	c.size += recSize
	return nil
}

// Delete removes an entry from the cache.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	c.size = 0
	return nil
}

// Size returns the current cache size in bytes.
func (c *MemoryCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.size
}

// Contains checks if a key exists in the cache without updating LRU.
func (c *MemoryCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.items[key]
	return ok
}

// Keys returns all keys, most recently used first.
func (c *MemoryCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for elem := c.eviction.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*memoryEntry).key)
	}
	return keys
}

// Stats returns cache statistics.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Size = c.size
	stats.ItemCount = int64(len(c.items))
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

// Prune removes records written before cutoff and returns how many went.
func (c *MemoryCache) Prune(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	pruned := 0
	elem := c.eviction.Back()
	for elem != nil {
		prev := elem.Prev()
		if elem.Value.(*memoryEntry).record.Time().Before(cutoff) {
			c.removeElement(elem)
			pruned++
		}
		elem = prev
	}
	return pruned
}

// evictOldest removes the least recently used item (must be called with lock held).
func (c *MemoryCache) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
		c.stats.Evictions++
	}
}

// removeElement removes an element from the cache (must be called with lock held).
func (c *MemoryCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	entry := elem.Value.(*memoryEntry)
	delete(c.items, entry.key)
	c.size -= entry.size
}

package cache

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// CacheManager layers the memory cache over the disk cache and applies the
// TTL on every read.
type CacheManager struct {
	l1Memory *MemoryCache
	l2Disk   *DiskCache

	ttl time.Duration
	now func() time.Time

	cleanupInterval time.Duration
	cleanupStop     chan struct{}
	cleanupWg       sync.WaitGroup

	mu    sync.Mutex
	stats struct {
		TotalHits   int64
		TotalMisses int64
		Expired     int64
		L1Hits      int64
		L2Hits      int64
		Promotions  int64
		CleanupRuns int64
		LastCleanup time.Time
	}
}

// Entry is one row of List.
type Entry struct {
	Key     string
	Address string
	Stored  time.Time
	Size    int64
	// Hits counts disk reads of the record across runs.
	Hits  int64
	Fresh bool
}

// ManagerStats aggregates the statistics of both cache levels.
type ManagerStats struct {
	TotalHits   int64
	TotalMisses int64
	Expired     int64
	HitRate     float64
	L1Hits      int64
	L2Hits      int64
	Promotions  int64
	CleanupRuns int64
	LastCleanup time.Time

	L1 CacheStats
	L2 CacheStats
}

// NewCacheManager opens the cache described by config.
func NewCacheManager(config *CacheConfig) (*CacheManager, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}
	if config.DiskPath == "" {
		return nil, errors.New("cache directory not configured")
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}

	l2Disk, err := NewDiskCache(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	cm := &CacheManager{
		l1Memory:        NewMemoryCache(config.MemoryCapacity),
		l2Disk:          l2Disk,
		ttl:             config.TTL,
		now:             time.Now,
		cleanupInterval: config.CleanupInterval,
		cleanupStop:     make(chan struct{}),
	}

	if cm.cleanupInterval > 0 {
		cm.startCleanupRoutine()
	}
	return cm, nil
}

// SetClock replaces the time source. Tests use it to age records.
func (cm *CacheManager) SetClock(now func() time.Time) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.now = now
}

// TTL returns the validity window.
func (cm *CacheManager) TTL() time.Duration {
	return cm.ttl
}

// Load returns the payload stored for key if it is younger than the TTL.
// Stale records are reported as absent but left in place to be overwritten.
func (cm *CacheManager) Load(key string) (Record, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	rec, level, ok := cm.get(key)
	if !ok {
		cm.stats.TotalMisses++
		return Record{}, false
	}
	if !rec.Fresh(cm.now(), cm.ttl) {
		cm.stats.Expired++
		cm.stats.TotalMisses++
		log.Debug("cache record expired", "key", key, "age", rec.Age(cm.now()))
		return Record{}, false
	}

	cm.stats.TotalHits++
	log.Debug("cache hit", "key", key, "level", level)
	switch level {
	case CacheLevelL1:
		cm.stats.L1Hits++
	case CacheLevelL2:
		cm.stats.L2Hits++
	}
	return rec, true
}

// Store saves data under key with a fresh timestamp and returns the record.
func (cm *CacheManager) Store(key string, data []byte) (Record, error) {
	cm.mu.Lock()
	rec := NewRecord(data, cm.now())
	cm.mu.Unlock()

	return rec, cm.Put(key, rec)
}

// Put writes rec to both levels. The disk write is what makes a record
// visible to later runs, so its error is returned.
func (cm *CacheManager) Put(key string, rec Record) error {
	if err := cm.l1Memory.Put(key, rec); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("L1 cache error: %w", err)
	}
	if err := cm.l2Disk.Put(key, rec); err != nil {
		return fmt.Errorf("L2 cache error: %w", err)
	}
	return nil
}

// levels returns the cache levels in lookup order.
func (cm *CacheManager) levels() map[CacheLevel]Cache {
	return map[CacheLevel]Cache{
		CacheLevelL1: cm.l1Memory,
		CacheLevelL2: cm.l2Disk,
	}
}

// Delete removes an entry from all cache levels.
func (cm *CacheManager) Delete(key string) error {
	var errs []error
	for level, c := range cm.levels() {
		if err := c.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("%s delete: %w", level, err))
		}
	}
	return errors.Join(errs...)
}

// Clear removes all entries from all cache levels.
func (cm *CacheManager) Clear() error {
	var errs []error
	for level, c := range cm.levels() {
		if err := c.Clear(); err != nil {
			errs = append(errs, fmt.Errorf("%s clear: %w", level, err))
		}
	}
	return errors.Join(errs...)
}

// Prune drops every record older than the TTL and returns how many were
// removed from disk.
func (cm *CacheManager) Prune() int {
	cm.mu.Lock()
	cutoff := cm.now().Add(-cm.ttl)
	cm.stats.CleanupRuns++
	cm.stats.LastCleanup = cm.now()
	cm.mu.Unlock()

	cm.l1Memory.Prune(cutoff)
	return cm.l2Disk.RemoveOlderThan(cutoff)
}

// List returns every stored record, newest first.
func (cm *CacheManager) List() []Entry {
	cm.mu.Lock()
	now := cm.now()
	cm.mu.Unlock()

	var entries []Entry
	for _, key := range cm.l2Disk.Keys() {
		meta, ok := cm.l2Disk.Metadata(key)
		if !ok {
			continue
		}
		addr, _ := AddressFromKey(key)
		entries = append(entries, Entry{
			Key:     key,
			Address: addr,
			Stored:  meta.Timestamp,
			Size:    meta.Size,
			Hits:    meta.Hits,
			Fresh:   now.Sub(meta.Timestamp) < cm.ttl,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Stored.After(entries[j].Stored)
	})
	return entries
}

// Addresses returns the token addresses of all stored records, newest first.
func (cm *CacheManager) Addresses() []string {
	var out []string
	for _, e := range cm.List() {
		if e.Address != "" {
			out = append(out, e.Address)
		}
	}
	return out
}

// Stats returns aggregated statistics from all cache levels.
func (cm *CacheManager) Stats() ManagerStats {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	totalRequests := cm.stats.TotalHits + cm.stats.TotalMisses
	var hitRate float64
	if totalRequests > 0 {
		hitRate = float64(cm.stats.TotalHits) / float64(totalRequests)
	}

	return ManagerStats{
		TotalHits:   cm.stats.TotalHits,
		TotalMisses: cm.stats.TotalMisses,
		Expired:     cm.stats.Expired,
		HitRate:     hitRate,
		L1Hits:      cm.stats.L1Hits,
		L2Hits:      cm.stats.L2Hits,
		Promotions:  cm.stats.Promotions,
		CleanupRuns: cm.stats.CleanupRuns,
		LastCleanup: cm.stats.LastCleanup,
		L1:          cm.l1Memory.Stats(),
		L2:          cm.l2Disk.Stats(),
	}
}

// Close stops the cleanup routine and flushes the disk index.
func (cm *CacheManager) Close() error {
	if cm.cleanupInterval > 0 {
		close(cm.cleanupStop)
		cm.cleanupWg.Wait()
	}
	if err := cm.l2Disk.Close(); err != nil {
		return fmt.Errorf("failed to close disk cache: %w", err)
	}
	return nil
}

// get looks in L1 then L2, promoting L2 hits (must be called with lock held).
func (cm *CacheManager) get(key string) (Record, CacheLevel, bool) {
	if rec, ok := cm.l1Memory.Get(key); ok {
		return rec, CacheLevelL1, true
	}
	if rec, ok := cm.l2Disk.Get(key); ok {
		cm.stats.Promotions++
		// Promotion is best-effort
		_ = cm.l1Memory.Put(key, rec)
		return rec, CacheLevelL2, true
	}
	return Record{}, 0, false
}

func (cm *CacheManager) startCleanupRoutine() {
	ticker := time.NewTicker(cm.cleanupInterval)
	cm.cleanupWg.Add(1)

	go func() {
		defer cm.cleanupWg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := cm.Prune(); n > 0 {
					log.Debug("pruned expired cache records", "count", n)
				}
			case <-cm.cleanupStop:
				return
			}
		}
	}()
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*DiskCache)(nil)
)

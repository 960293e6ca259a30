package cache

import (
	"errors"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheMiss is returned when an item is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheCorrupted is returned when cache data is corrupted
	ErrCacheCorrupted = errors.New("cache data corrupted")
)

// CacheLevel represents the cache tier
type CacheLevel int

const (
	// CacheLevelL1 represents the memory cache (fastest)
	CacheLevelL1 CacheLevel = iota

	// CacheLevelL2 represents the disk cache (persistent)
	CacheLevelL2
)

// String returns the string representation of the cache level
func (l CacheLevel) String() string {
	switch l {
	case CacheLevelL1:
		return "L1-Memory"
	case CacheLevelL2:
		return "L2-Disk"
	default:
		return "Unknown"
	}
}

// CacheStats holds cache performance metrics
type CacheStats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
}

// CacheMetadata describes a cached record without its payload.
type CacheMetadata struct {
	Key       string
	Size      int64 // Payload size in bytes
	Timestamp time.Time
	Hits      int64
	Level     CacheLevel
}

// CacheConfig holds configuration for a CacheManager.
type CacheConfig struct {
	// Memory cache (L1)
	MemoryCapacity int64 // Bytes

	// Disk cache (L2)
	DiskCapacity     int64  // Bytes
	DiskPath         string // Directory for cache files
	CompressionLevel int    // Zstd level (1-22), 0 disables compression

	// TTL is the validity window of a record.
	TTL time.Duration

	// CleanupInterval is how often expired records are pruned. Zero
	// disables the background routine.
	CleanupInterval time.Duration
}

// DefaultTTL is how long a token lookup stays fresh.
const DefaultTTL = time.Minute

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		MemoryCapacity:   4 * 1024 * 1024,  // 4MB
		DiskCapacity:     32 * 1024 * 1024, // 32MB
		CompressionLevel: 3,
		TTL:              DefaultTTL,
	}
}

// Cache defines the interface shared by both cache levels.
type Cache interface {
	Get(key string) (Record, bool)
	Put(key string, rec Record) error
	Delete(key string) error
	Clear() error

	Size() int64
	Contains(key string) bool
	Keys() []string

	Stats() CacheStats
}

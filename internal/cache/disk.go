package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const indexFile = "cache.index"

// DiskCache is the L2 cache. Each record lives in its own file holding the
// JSON storage form, optionally zstd-compressed, and a gob index maps keys to
// files so the store survives restarts.
type DiskCache struct {
	basePath string
	capacity int64
	size     int64

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*diskEntry

	mu    sync.Mutex
	stats CacheStats
}

type diskEntry struct {
	Key        string
	FilePath   string
	Size       int64 // bytes on disk
	Timestamp  int64 // record timestamp, unix ms
	LastAccess time.Time
	Hits       int64
	Compressed bool
}

// NewDiskCache opens (or creates) a disk cache rooted at basePath.
// compressionLevel 0 stores records uncompressed.
func NewDiskCache(basePath string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		basePath: basePath,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
		stats:    CacheStats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}
	// Always able to read compressed files, even if compression was turned
	// off since they were written.
	var err error
	dc.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	if err := dc.loadIndex(); err != nil {
		// Non-fatal: start over with an empty index.
		dc.index = make(map[string]*diskEntry)
	}
	dc.calculateSize()

	return dc, nil
}

// Get reads the record for key from disk.
func (dc *DiskCache) Get(key string) (Record, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		dc.stats.Misses++
		return Record{}, false
	}

	rec, err := dc.readEntry(entry)
	if err != nil {
		// File missing or corrupted, forget it
		dc.dropEntry(key, entry)
		_ = dc.saveIndex()
		dc.stats.Misses++
		return Record{}, false
	}

	entry.LastAccess = time.Now()
	entry.Hits++
	dc.stats.Hits++
	dc.stats.LastAccess = entry.LastAccess
	return rec, true
}

// Put writes rec to disk, replacing any previous record for key.
func (dc *DiskCache) Put(key string, rec Record) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	raw, err := MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	data := raw
	compressed := false
	if dc.encoder != nil && len(raw) > 1024 { // Only compress if > 1KB
		if c := dc.encoder.EncodeAll(raw, nil); len(c) < len(raw) {
			data = c
			compressed = true
		}
	}
	diskSize := int64(len(data))

	if diskSize > dc.capacity {
		return ErrItemTooLarge
	}

	if existing, ok := dc.index[key]; ok {
		dc.dropEntry(key, existing)
	}
	for dc.size+diskSize > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	path := dc.generateFilePath(key)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	dc.index[key] = &diskEntry{
		Key:        key,
		FilePath:   path,
		Size:       diskSize,
		Timestamp:  rec.Timestamp,
		LastAccess: time.Now(),
		Compressed: compressed,
	}
	dc.size += diskSize

	return dc.saveIndex()
}

// Delete removes an entry from the disk cache.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		return nil
	}
	dc.dropEntry(key, entry)
	return dc.saveIndex()
}

// Clear removes all entries from the disk cache.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for _, entry := range dc.index {
		_ = os.Remove(entry.FilePath)
	}
	dc.index = make(map[string]*diskEntry)
	dc.size = 0

	return dc.saveIndex()
}

// Size returns the current cache size in bytes.
func (dc *DiskCache) Size() int64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	return dc.size
}

// Contains checks if a key exists in the index without reading the file.
func (dc *DiskCache) Contains(key string) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	_, ok := dc.index[key]
	return ok
}

// Keys returns every indexed key.
func (dc *DiskCache) Keys() []string {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	keys := make([]string, 0, len(dc.index))
	for key := range dc.index {
		keys = append(keys, key)
	}
	return keys
}

// Metadata returns index information for key.
func (dc *DiskCache) Metadata(key string) (CacheMetadata, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok {
		return CacheMetadata{}, false
	}
	return CacheMetadata{
		Key:       entry.Key,
		Size:      entry.Size,
		Timestamp: time.UnixMilli(entry.Timestamp),
		Hits:      entry.Hits,
		Level:     CacheLevelL2,
	}, true
}

// Stats returns cache statistics.
func (dc *DiskCache) Stats() CacheStats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	stats := dc.stats
	stats.Size = dc.size
	stats.ItemCount = int64(len(dc.index))
	if stats.Hits+stats.Misses > 0 {
		stats.HitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}
	return stats
}

// RemoveOlderThan removes records written before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, entry := range dc.index {
		if time.UnixMilli(entry.Timestamp).Before(cutoff) {
			dc.dropEntry(key, entry)
			removed++
		}
	}
	if removed > 0 {
		_ = dc.saveIndex()
	}
	return removed
}

// Close saves the index.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.encoder != nil {
		_ = dc.encoder.Close()
	}
	dc.decoder.Close()
	return dc.saveIndex()
}

// Private helper methods

func (dc *DiskCache) readEntry(entry *diskEntry) (Record, error) {
	data, err := os.ReadFile(entry.FilePath)
	if err != nil {
		return Record{}, err
	}
	if entry.Compressed {
		data, err = dc.decoder.DecodeAll(data, nil)
		if err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
		}
	}
	return UnmarshalRecord(data)
}

// dropEntry removes entry's file and index slot (must be called with lock held).
func (dc *DiskCache) dropEntry(key string, entry *diskEntry) {
	_ = os.Remove(entry.FilePath)
	delete(dc.index, key)
	dc.size -= entry.Size
}

func (dc *DiskCache) generateFilePath(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(dc.basePath, hex.EncodeToString(hash[:16])+".json")
}

func (dc *DiskCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range dc.index {
		if oldestKey == "" || entry.LastAccess.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.LastAccess
		}
	}

	if oldestKey != "" {
		dc.dropEntry(oldestKey, dc.index[oldestKey])
		dc.stats.Evictions++
	}
}

func (dc *DiskCache) loadIndex() error {
	file, err := os.Open(filepath.Join(dc.basePath, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No index file yet
		}
		return err
	}
	defer file.Close() //nolint:errcheck

	index := make(map[string]*diskEntry)
	if err := gob.NewDecoder(file).Decode(&index); err != nil {
		return err
	}
	for key, entry := range index {
		if _, err := os.Stat(entry.FilePath); err != nil {
			delete(index, key)
		}
	}
	dc.index = index
	return nil
}

func (dc *DiskCache) saveIndex() error {
	file, err := os.CreateTemp(dc.basePath, indexFile+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := file.Name()

	err = gob.NewEncoder(file).Encode(dc.index)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return os.Rename(tempPath, filepath.Join(dc.basePath, indexFile))
}

func (dc *DiskCache) calculateSize() {
	dc.size = 0
	for _, entry := range dc.index {
		dc.size += entry.Size
	}
}

// writeFileAtomic writes to a temp file first, then renames over path.
func writeFileAtomic(path string, data []byte) error {
	file, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := file.Name()

	_, err = file.Write(data)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return os.Rename(tempPath, path)
}

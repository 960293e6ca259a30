// Package cache stores token lookups keyed by `dex_{address}`. Records are
// JSON `{"data": ..., "timestamp": <unix ms>}` documents kept in an in-memory
// LRU (L1) backed by a compressed on-disk store (L2). A record older than the
// configured TTL is treated as absent.
package cache

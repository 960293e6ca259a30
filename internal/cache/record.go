package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// KeyPrefix is prepended to token addresses to form storage keys.
const KeyPrefix = "dex_"

// Key returns the storage key for a token address.
func Key(address string) string {
	return KeyPrefix + address
}

// AddressFromKey strips KeyPrefix. ok is false for foreign keys.
func AddressFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, KeyPrefix), true
}

// Record is a cached API payload and the moment it was stored.
type Record struct {
	// Data is the raw API response.
	Data json.RawMessage `json:"data"`

	// Timestamp is milliseconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// NewRecord stamps data with now.
func NewRecord(data []byte, now time.Time) Record {
	return Record{Data: json.RawMessage(data), Timestamp: now.UnixMilli()}
}

// Time returns Timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Age returns how long ago the record was written.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(r.Time())
}

// Fresh reports whether the record is younger than ttl. A record exactly ttl
// old is stale.
func (r Record) Fresh(now time.Time, ttl time.Duration) bool {
	return r.Age(now) < ttl
}

// size is the accounting size of the record in bytes.
func (r Record) size() int64 {
	return int64(len(r.Data)) + 8
}

// MarshalRecord encodes r in its storage form.
func MarshalRecord(r Record) ([]byte, error) {
	if len(r.Data) == 0 {
		r.Data = json.RawMessage("null")
	}
	return json.Marshal(r)
}

// UnmarshalRecord decodes a stored record.
func UnmarshalRecord(b []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}
	return r, nil
}

package cache

import "time"

// Cache is the interface for caching token metadata.
//
// Token decimals never change for a deployed token, so repeated
// population with the same value is always safe; callers may populate
// concurrently without coordination.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache. A zero TTL means the entry never
	// expires.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value from the cache.
	Delete(key string)

	// Close closes the cache and releases resources.
	Close()
}

package cache

import (
	"fmt"
	"time"
)

// CacheService defines the behavior for caching mechanisms
type CacheService interface {
	// Get retrieves a value from the cache
	// Returns value, true if found
	// Returns nil, false if not found
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a duration
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value from the cache
	Delete(key string)

	// Flush removes all items
	Flush()
}

// QuoteKey builds the quote cache key. Coordinates are rounded to 5 decimal
// places (~1.1m) so near-identical destinations share an entry, and the
// warehouse generation is baked in so every committed zone/slab mutation
// makes older entries unreachable without a sweep.
func QuoteKey(warehouseID int64, lat, lng float64, generation uint64) string {
	return fmt.Sprintf("quote:%d:%.5f:%.5f:g%d", warehouseID, lat, lng, generation)
}

// Package cache provides the bounded in-memory cache of the database: an
// LRU cache with per-entry TTL expiry and approximate memory accounting.
//
// The cache enforces two limits at admission time, a maximum entry count
// and a maximum accounted memory footprint. When an insert would exceed
// either limit, entries are evicted from the least recently used end until
// the new entry fits. Entry sizes come from a pluggable CostFunc; the
// built-in DefaultCost charges flat costs for scalars and twice the JSON
// length for structured values, so the accounting tracks real usage
// closely enough to act as a budget without ever serializing on the read
// path.
//
// Expiry is enforced twice: lazily, when an expired entry is touched by
// Get or Has, and proactively by a background sweep goroutine. The sweep
// pops due entries off a deadline-ordered heap (O(1) to find the next
// victim) and additionally applies hysteresis against the memory limit,
// shedding cold entries above 80% usage until usage falls below 70%.
//
// Key Components:
//
//   - ICache: the cache interface (Set/SetE/Get/Has/Delete, the Multi*
//     batch variants, Cleanup, Stats, Close)
//   - Options / DefaultOptions: size limits, default TTL, sweep interval,
//     cost function, logger and metrics wiring
//   - DefaultCost / ParseSize / FormatSize: the size heuristic and
//     human-readable memory limits like "512MB"
//
// Usage:
//
//	c := cache.NewCache(cache.DefaultOptions())
//	defer c.Close()
//
//	c.Set("users:42", doc)
//	c.SetE("sessions:abc", session, 5*time.Minute)
//
//	if v, ok := c.Get("users:42"); ok {
//		// cache hit
//	}
//
// All operations are safe for concurrent use. A single mutex guards the
// entry map, the recency list and the expiry heap, which keeps the three
// structures consistent and makes hit latency predictable.
package cache

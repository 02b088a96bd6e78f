package cache

import (
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/rs/zerolog"
)

// ICache is a bounded in-memory cache with LRU eviction and per-entry
// TTL expiry. It limits both the number of entries and their accounted
// memory footprint (see CostFunc); whenever an insert would exceed either
// bound, least recently used entries are evicted first.
//
// Expired entries are dropped lazily on access and proactively by a
// background sweep that runs every SweepInterval. The sweep additionally
// applies hysteresis against the memory limit: above 80% usage it sheds
// LRU entries until usage is back under 70%.
//
// Thread-safety: all methods are safe for concurrent use.
type ICache interface {
	// Set stores a value under key using the cache's default lifetime.
	// An existing entry under the same key is replaced.
	Set(key string, value any)

	// SetE stores a value under key with an explicit lifetime. A ttl of
	// zero or less stores the entry without expiry.
	SetE(key string, value any, ttl time.Duration)

	// Get returns the value stored under key and marks it as most
	// recently used. The second return value reports whether a live
	// entry was found; expired entries count as misses and are dropped.
	Get(key string) (any, bool)

	// Has reports whether a live entry exists under key. Unlike Get it
	// neither touches the LRU order nor the hit/miss counters.
	Has(key string) bool

	// Delete removes the entry under key. It returns false if no entry
	// existed.
	Delete(key string) bool

	// MultiSet stores all given entries with the default lifetime.
	MultiSet(entries map[string]any)

	// MultiGet returns the live values for all given keys. Keys without
	// a live entry are absent from the result.
	MultiGet(keys []string) map[string]any

	// MultiDelete removes all given keys and returns how many entries
	// actually existed.
	MultiDelete(keys []string) int

	// Cleanup runs one maintenance pass synchronously: it drops all
	// entries past their deadline and applies the memory hysteresis.
	// It returns the number of entries removed. The background sweep
	// calls this on every tick.
	Cleanup() int

	// Len returns the current number of entries, including entries that
	// are past their deadline but not yet collected.
	Len() int

	// Stats returns a snapshot of the cache counters and memory usage.
	Stats() Stats

	// Close stops the background sweep. The cache remains usable, only
	// unmaintained. Close is idempotent.
	Close() error
}

// --------------------------------------------------------------------------
// Statistics
// --------------------------------------------------------------------------

// Stats is a point-in-time snapshot of the cache.
type Stats struct {
	// Hits counts Get calls that returned a live entry
	Hits uint64 `json:"hits"`
	// Misses counts Get calls that found nothing or an expired entry
	Misses uint64 `json:"misses"`
	// HitRate is Hits/(Hits+Misses), zero when the cache is unused
	HitRate float64 `json:"hit_rate"`
	// Evictions counts entries removed due to capacity pressure
	Evictions uint64 `json:"evictions"`
	// Expirations counts entries removed because their deadline passed
	Expirations uint64 `json:"expirations"`
	// Items is the current number of entries
	Items int `json:"items"`
	// MaxItems is the configured entry limit
	MaxItems int `json:"max_items"`
	// MemoryBytes is the accounted memory footprint
	MemoryBytes int64 `json:"memory_bytes"`
	// MaxMemoryBytes is the configured memory limit
	MaxMemoryBytes int64 `json:"max_memory_bytes"`
	// Memory is MemoryBytes in human-readable form
	Memory string `json:"memory"`
	// MaxMemory is MaxMemoryBytes in human-readable form
	MaxMemory string `json:"max_memory"`
	// Utilization is the memory usage as a percentage of the limit
	Utilization float64 `json:"utilization"`
}

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures a cache instance. Zero fields fall back to their
// defaults, with the exception of DefaultTTL where zero is meaningful and
// disables expiry.
type Options struct {
	// MaxMemory is the memory limit as a human-readable size (see
	// ParseSize). Unparsable values fall back to "512MB" with a warning.
	MaxMemory string

	// MaxItems is the maximum number of entries (default 10000).
	MaxItems int

	// DefaultTTL is the lifetime applied by Set and MultiSet. Zero
	// stores entries without expiry.
	DefaultTTL time.Duration

	// SweepInterval is the period of the background cleanup (default
	// one minute).
	SweepInterval time.Duration

	// Cost estimates entry sizes (default DefaultCost).
	Cost CostFunc

	// Logger receives sweep diagnostics (default zerolog.Nop()).
	Logger zerolog.Logger

	// Metrics optionally receives cache event counters under
	// bigbase_cache_events_total{event="..."}.
	Metrics *metrics.Set
}

// DefaultOptions returns the default cache configuration: 512MB memory
// limit, 10000 entries, one hour default TTL, one minute sweep interval.
func DefaultOptions() *Options {
	return &Options{
		MaxMemory:     "512MB",
		MaxItems:      10000,
		DefaultTTL:    time.Hour,
		SweepInterval: time.Minute,
		Logger:        zerolog.Nop(),
	}
}

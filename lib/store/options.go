package store

import (
	"time"

	"github.com/rs/zerolog"
)

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures a store instance. The caching and indexing subsystems
// are toggled independently; disabling one never changes the behavior of
// the other.
type Options struct {
	// MaxMemory bounds the cache memory in human-readable form, e.g.
	// "512MB" (the default). See cache.ParseSize for the syntax.
	MaxMemory string

	// MaxCacheItems bounds the number of cached documents (default
	// 10000).
	MaxCacheItems int

	// CacheTTL is the cache lifetime of a document. A document carrying
	// a numeric _ttl field (milliseconds) overrides it for itself. Zero
	// caches without expiry.
	CacheTTL time.Duration

	// SweepInterval is the period of the cache maintenance (default one
	// minute).
	SweepInterval time.Duration

	// Caching toggles the read cache. Disabled, every read is served
	// from memory or the backend directly.
	Caching bool

	// Indexing toggles the secondary indexes. Disabled, the index
	// operations fail with ErrIndexingDisabled and every query scans.
	Indexing bool

	// Logger receives lifecycle and mutation diagnostics (default
	// zerolog.Nop()).
	Logger zerolog.Logger
}

// DefaultOptions returns the default configuration: 512MB cache memory,
// 10000 cached documents, one hour cache TTL, one minute sweep interval,
// caching and indexing enabled.
func DefaultOptions() *Options {
	return &Options{
		MaxMemory:     "512MB",
		MaxCacheItems: 10000,
		CacheTTL:      time.Hour,
		SweepInterval: time.Minute,
		Caching:       true,
		Indexing:      true,
		Logger:        zerolog.Nop(),
	}
}

package cache

import (
	"sync"
	"time"

	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/cache/internal"
	"github.com/VictoriaMetrics/metrics"
	"github.com/rs/zerolog"
)

const (
	defaultMaxMemory = 512 << 20
	defaultMaxItems  = 10000

	// hysteresis thresholds of the background sweep, in percent of the
	// memory limit
	cleanupHighPct = 80
	cleanupLowPct  = 70
)

// cacheImpl implements the ICache interface. A single mutex guards the
// entry map, the LRU list and the expiry heap so the three structures can
// never disagree about which entries exist.
type cacheImpl struct {
	mu      sync.Mutex
	entries map[string]*internal.Entry
	lru     internal.List
	expiry  *internal.ExpiryHeap
	memory  int64

	maxMemory  int64
	maxItems   int
	defaultTTL time.Duration
	cost       CostFunc
	logger     zerolog.Logger

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64

	metricHits        *metrics.Counter
	metricMisses      *metrics.Counter
	metricEvictions   *metrics.Counter
	metricExpirations *metrics.Counter

	done      chan struct{}
	closeOnce sync.Once
}

// NewCache creates a cache with the given options (nil for defaults) and
// starts its background sweep.
func NewCache(opts *Options) ICache {
	if opts == nil {
		opts = DefaultOptions()
	}

	logger := opts.Logger
	maxMemory, err := ParseSize(opts.MaxMemory)
	if err != nil || maxMemory <= 0 {
		if opts.MaxMemory != "" {
			logger.Warn().
				Str("max_memory", opts.MaxMemory).
				Msg("unparsable cache memory limit, falling back to 512MB")
		}
		maxMemory = defaultMaxMemory
	}

	maxItems := opts.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}

	cost := opts.Cost
	if cost == nil {
		cost = DefaultCost
	}

	interval := opts.SweepInterval
	if interval <= 0 {
		interval = time.Minute
	}

	// Counters always point at a set so the hot paths need no nil checks.
	set := opts.Metrics
	if set == nil {
		set = metrics.NewSet()
	}

	c := &cacheImpl{
		entries:           make(map[string]*internal.Entry),
		expiry:            internal.NewExpiryHeap(),
		maxMemory:         maxMemory,
		maxItems:          maxItems,
		defaultTTL:        opts.DefaultTTL,
		cost:              cost,
		logger:            logger,
		metricHits:        set.GetOrCreateCounter(`bigbase_cache_events_total{event="hit"}`),
		metricMisses:      set.GetOrCreateCounter(`bigbase_cache_events_total{event="miss"}`),
		metricEvictions:   set.GetOrCreateCounter(`bigbase_cache_events_total{event="eviction"}`),
		metricExpirations: set.GetOrCreateCounter(`bigbase_cache_events_total{event="expiration"}`),
		done:              make(chan struct{}),
	}

	go c.sweepLoop(interval)

	return c
}

// --------------------------------------------------------------------------
// Writes
// --------------------------------------------------------------------------

func (c *cacheImpl) Set(key string, value any) {
	c.SetE(key, value, c.defaultTTL)
}

func (c *cacheImpl) SetE(key string, value any, ttl time.Duration) {
	size := c.cost(value)
	now := time.Now().UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Replacing an entry frees its budget before admission is checked.
	if old, exists := c.entries[key]; exists {
		c.unlink(old)
	}

	// Evict from the cold end until the new entry fits both bounds. If
	// the entry alone exceeds the memory limit it is admitted anyway
	// into an otherwise empty cache.
	for len(c.entries) >= c.maxItems || c.memory+int64(size) > c.maxMemory {
		front := c.lru.Front()
		if front == nil {
			break
		}
		c.unlink(front)
		c.evictions++
		c.metricEvictions.Inc()
	}

	e := &internal.Entry{Key: key, Value: value, Size: size}
	if ttl > 0 {
		e.ExpireAt = now + ttl.Nanoseconds()
		c.expiry.Set(key, e.ExpireAt)
	}
	c.entries[key] = e
	c.lru.PushBack(e)
	c.memory += int64(size)
}

func (c *cacheImpl) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		return false
	}
	c.unlink(e)
	return true
}

func (c *cacheImpl) MultiSet(entries map[string]any) {
	for key, value := range entries {
		c.Set(key, value)
	}
}

func (c *cacheImpl) MultiDelete(keys []string) int {
	deleted := 0
	for _, key := range keys {
		if c.Delete(key) {
			deleted++
		}
	}
	return deleted
}

// --------------------------------------------------------------------------
// Reads
// --------------------------------------------------------------------------

func (c *cacheImpl) Get(key string) (any, bool) {
	now := time.Now().UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		c.misses++
		c.metricMisses.Inc()
		return nil, false
	}
	if expired(e, now) {
		c.unlink(e)
		c.expirations++
		c.metricExpirations.Inc()
		c.misses++
		c.metricMisses.Inc()
		return nil, false
	}

	c.hits++
	c.metricHits.Inc()
	c.lru.MoveToBack(e)
	return e.Value, true
}

func (c *cacheImpl) Has(key string) bool {
	now := time.Now().UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists {
		return false
	}
	if expired(e, now) {
		c.unlink(e)
		c.expirations++
		c.metricExpirations.Inc()
		return false
	}
	return true
}

func (c *cacheImpl) MultiGet(keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if value, exists := c.Get(key); exists {
			out[key] = value
		}
	}
	return out
}

func (c *cacheImpl) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// --------------------------------------------------------------------------
// Maintenance
// --------------------------------------------------------------------------

func (c *cacheImpl) Cleanup() int {
	now := time.Now().UnixNano()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0

	// Drop everything past its deadline, earliest deadline first.
	for {
		key, deadline, ok := c.expiry.Peek()
		if !ok || deadline > now {
			break
		}
		e, exists := c.entries[key]
		if !exists {
			c.expiry.Remove(key)
			continue
		}
		c.unlink(e)
		c.expirations++
		c.metricExpirations.Inc()
		removed++
	}

	// Shed cold entries once usage crosses the high watermark, down to
	// the low watermark. The gap keeps a borderline-full cache from
	// thrashing on every sweep.
	high := c.maxMemory * cleanupHighPct / 100
	low := c.maxMemory * cleanupLowPct / 100
	if c.memory > high {
		for c.memory > low {
			front := c.lru.Front()
			if front == nil {
				break
			}
			c.unlink(front)
			c.evictions++
			c.metricEvictions.Inc()
			removed++
		}
	}

	return removed
}

func (c *cacheImpl) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Hits:           c.hits,
		Misses:         c.misses,
		Evictions:      c.evictions,
		Expirations:    c.expirations,
		Items:          len(c.entries),
		MaxItems:       c.maxItems,
		MemoryBytes:    c.memory,
		MaxMemoryBytes: c.maxMemory,
		Memory:         FormatSize(c.memory),
		MaxMemory:      FormatSize(c.maxMemory),
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	if c.maxMemory > 0 {
		s.Utilization = float64(c.memory) / float64(c.maxMemory) * 100
	}
	return s
}

func (c *cacheImpl) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

// --------------------------------------------------------------------------
// Internals
// --------------------------------------------------------------------------

// unlink removes an entry from the map, the LRU list, the expiry heap and
// the memory accounting. The caller must hold c.mu.
func (c *cacheImpl) unlink(e *internal.Entry) {
	delete(c.entries, e.Key)
	c.lru.Remove(e)
	if e.ExpireAt != 0 {
		c.expiry.Remove(e.Key)
	}
	c.memory -= int64(e.Size)
}

func expired(e *internal.Entry, now int64) bool {
	return e.ExpireAt != 0 && now >= e.ExpireAt
}

// sweepLoop runs Cleanup on every tick until the cache is closed.
func (c *cacheImpl) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep runs one cleanup pass. A panic (e.g. from a user-supplied cost
// function) is logged and swallowed so a single bad pass cannot kill the
// maintenance loop.
func (c *cacheImpl) sweep() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("cache sweep failed")
		}
	}()

	if removed := c.Cleanup(); removed > 0 {
		c.logger.Debug().Int("removed", removed).Msg("cache sweep collected entries")
	}
}

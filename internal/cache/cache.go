// Package cache provides the bounded key/value store used to hold
// intermediate chunk results during materialization. The cache operates under
// a soft byte budget with strict least-recently-used eviction: insertion and
// access both refresh recency, and eviction always removes the
// least-recently-touched entry first.
package cache

import (
	"container/list"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// bytesPerSample is the in-memory size of one complex128 sample.
const bytesPerSample = 16

// Prometheus metrics for cache-level observability.
var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daft_cache_hits_total",
		Help: "Total number of cache hits during materialization",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daft_cache_misses_total",
		Help: "Total number of cache misses during materialization",
	})
	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daft_cache_evictions_total",
		Help: "Total number of entries evicted from the cache",
	})
	cacheBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "daft_cache_bytes",
		Help: "Current estimated cache footprint in bytes",
	})
)

// Stats aggregates the cache's observable counters. A fresh copy is returned
// by the Stats method; the fields never decrease except via a new cache.
type Stats struct {
	// Hits is the number of Get calls that found their key.
	Hits int64
	// Misses is the number of Get calls that did not find their key.
	Misses int64
	// Puts is the number of entries inserted.
	Puts int64
	// Evictions is the number of entries removed to enforce the budget.
	Evictions int64
	// Overflows counts insertions whose single value exceeded the whole
	// budget. Such values are stored regardless: the budget is a soft target.
	Overflows int64
}

// entry is one cached chunk result together with its byte-size estimate.
type entry struct {
	key   string
	value []complex128
	size  int64
}

// Bounded is a capacity-limited key -> chunk store with LRU eviction. All
// methods are safe for concurrent use; a single mutex guards the recency list
// and the index, which is acceptable because eviction is infrequent relative
// to the cost of computing an entry.
type Bounded struct {
	mu     sync.Mutex
	budget int64
	used   int64
	ll     *list.List // front = most recently touched
	items  map[string]*list.Element
	stats  Stats
	logger zerolog.Logger
	warned bool
}

// NewBounded creates a cache with the given byte budget. A non-positive
// budget disables retention entirely except for oversized single entries.
//
// Parameters:
//   - budget: The soft memory budget in bytes.
//   - logger: Logger for eviction diagnostics and overflow warnings.
//
// Returns:
//   - *Bounded: An empty cache.
func NewBounded(budget int64, logger zerolog.Logger) *Bounded {
	return &Bounded{
		budget: budget,
		ll:     list.New(),
		items:  make(map[string]*list.Element),
		logger: logger,
	}
}

// Get looks up the chunk stored under key, refreshing its recency on a hit.
//
// Parameters:
//   - key: The deterministic task-node key.
//
// Returns:
//   - []complex128: The cached chunk, or nil.
//   - bool: Whether the key was present.
func (c *Bounded) Get(key string) ([]complex128, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.ll.MoveToFront(elem)
		c.stats.Hits++
		cacheHits.Inc()
		return elem.Value.(*entry).value, true
	}
	c.stats.Misses++
	cacheMisses.Inc()
	return nil, false
}

// Put stores value under key, evicting least-recently-used entries until the
// byte budget accommodates it. A value larger than the entire budget is still
// stored after the cache has been emptied; that condition is logged once per
// cache because it usually means the chunk size and budget are mismatched.
//
// Parameters:
//   - key: The deterministic task-node key.
//   - value: The chunk result to retain.
func (c *Bounded) Put(key string, value []complex128) {
	size := int64(len(value)) * bytesPerSample

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		c.used += size - ent.size
		ent.value = value
		ent.size = size
		c.ll.MoveToFront(elem)
		cacheBytes.Set(float64(c.used))
		return
	}

	for c.used+size > c.budget && c.ll.Len() > 0 {
		c.evictOldest()
	}
	if size > c.budget {
		c.stats.Overflows++
	}
	if size > c.budget && !c.warned {
		c.warned = true
		c.logger.Warn().
			Str("key", key).
			Int64("size", size).
			Int64("budget", c.budget).
			Msg("cache entry exceeds the entire memory budget; storing it anyway")
	}

	elem := c.ll.PushFront(&entry{key: key, value: value, size: size})
	c.items[key] = elem
	c.used += size
	c.stats.Puts++
	cacheBytes.Set(float64(c.used))
}

// evictOldest removes the least-recently-touched entry. Caller holds c.mu.
func (c *Bounded) evictOldest() {
	elem := c.ll.Back()
	if elem == nil {
		return
	}
	ent := elem.Value.(*entry)
	c.ll.Remove(elem)
	delete(c.items, ent.key)
	c.used -= ent.size
	c.stats.Evictions++
	cacheEvictions.Inc()
	c.logger.Debug().Str("key", ent.key).Int64("size", ent.size).Msg("evicted cache entry")
}

// Len returns the number of resident entries.
func (c *Bounded) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Used returns the current estimated footprint in bytes.
func (c *Bounded) Used() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Budget returns the configured soft byte budget.
func (c *Bounded) Budget() int64 { return c.budget }

// Stats returns a snapshot of the cache counters.
func (c *Bounded) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

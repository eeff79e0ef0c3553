package cache

import (
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Default configuration constants.
const (
	// DefaultShardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	DefaultShardCount = 16

	// DefaultCapacity is the default maximum entries per shard.
	DefaultCapacity = 256

	shardMask = DefaultShardCount - 1
)

// Hasher computes the shard hash of a key.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// FlightKey maps a key to the string that identifies its in-flight
// computation within a shard. It must be injective over the keys of one
// shard.
type FlightKey[K any] func(K) string

// Uint64Hasher returns the key itself as the hash.
func Uint64Hasher(u uint64) uint64 {
	return u
}

// ShardedCache is a thread-safe, sharded LRU cache with single-flight
// construction.
//
// Each of the 16 shards has its own lock, recency list and in-flight group.
// GetOrCompute guarantees that at most one computation per key runs at a
// time; concurrent callers for the same key wait for and share its result.
// Computations run without any shard lock held, so a slow build for one key
// never blocks lookups of another.
//
// Failed computations are not cached.
type ShardedCache[K comparable, V any] struct {
	shards   [DefaultShardCount]*shard[K, V]
	hasher    Hasher[K]
	flightKey FlightKey[K]
	capacity  int // per shard

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	computes  atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*lruEntry[K, V]
	lru     lruList[K, V]
	flight  singleflight.Group
}

// NewSharded creates a cache holding up to capacity entries per shard.
// If capacity <= 0, DefaultCapacity is used.
//
// In-flight computations are identified by the key itself when K is a string
// and by its fmt.Sprint form otherwise, which must then be unique per key.
// Use NewShardedKeyed for keys whose printed form is not.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *ShardedCache[K, V] {
	return NewShardedKeyed[K, V](capacity, hasher, nil)
}

// NewShardedKeyed is like NewSharded but identifies in-flight computations
// with flightKey. A nil flightKey selects the NewSharded default.
func NewShardedKeyed[K comparable, V any](capacity int, hasher Hasher[K], flightKey FlightKey[K]) *ShardedCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if flightKey == nil {
		flightKey = printedKey[K]
	}

	c := &ShardedCache[K, V]{
		hasher:    hasher,
		flightKey: flightKey,
		capacity:  capacity,
	}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{entries: make(map[K]*lruEntry[K, V])}
	}
	return c
}

func printedKey[K any](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return fmt.Sprint(key)
}

func (c *ShardedCache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get retrieves a cached value by key and marks it as recently used.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)

	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		s.lru.touch(e)
	}
	s.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set stores a value, evicting the least recently used entries of the shard
// when it is full. The value is stored as-is.
func (c *ShardedCache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	c.setLocked(s, key, value)
}

func (c *ShardedCache[K, V]) setLocked(s *shard[K, V], key K, value V) {
	if e, ok := s.entries[key]; ok {
		e.value = value
		s.lru.touch(e)
		return
	}

	for s.lru.Len() >= c.capacity {
		oldest := s.lru.popBack()
		if oldest == nil {
			break
		}
		delete(s.entries, oldest.key)
		c.evictions.Add(1)
	}

	e := &lruEntry[K, V]{key: key, value: value}
	s.lru.pushFront(e)
	s.entries[key] = e
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result. Concurrent calls for the same key share one compute call.
// If compute fails, the error is returned to every waiting caller and
// nothing is stored.
func (c *ShardedCache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	s := c.shardFor(key)
	res, err, _ := s.flight.Do(c.flightKey(key), func() (any, error) {
		// A flight that finished between Get and Do may have stored it.
		s.mu.Lock()
		if e, ok := s.entries[key]; ok {
			s.lru.touch(e)
			s.mu.Unlock()
			return e.value, nil
		}
		s.mu.Unlock()

		c.computes.Add(1)
		v, err := compute()
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		c.setLocked(s, key, v)
		s.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Delete removes an entry. It reports whether the entry was present.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.remove(e)
	delete(s.entries, key)
	return true
}

// Clear removes all entries. Statistics are kept.
func (c *ShardedCache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*lruEntry[K, V])
		s.lru.clear()
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Capacity returns the per-shard capacity.
func (c *ShardedCache[K, V]) Capacity() int {
	return c.capacity
}

// TotalCapacity returns the total capacity across all shards.
func (c *ShardedCache[K, V]) TotalCapacity() int {
	return c.capacity * DefaultShardCount
}

// Stats returns a snapshot of the cache counters.
func (c *ShardedCache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:           c.Len(),
		Capacity:      c.capacity,
		TotalCapacity: c.capacity * DefaultShardCount,
		Hits:          hits,
		Misses:        misses,
		HitRate:       hitRate,
		Evictions:     c.evictions.Load(),
		Computes:      c.computes.Load(),
	}
}

// ResetStats resets all counters to zero.
func (c *ShardedCache[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.computes.Store(0)
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the per-shard capacity.
	Capacity int
	// TotalCapacity is the capacity across all shards.
	TotalCapacity int
	// Hits and Misses count lookups.
	Hits   uint64
	Misses uint64
	// HitRate is Hits / (Hits + Misses), or 0 before the first lookup.
	HitRate float64
	// Evictions counts entries dropped to make room.
	Evictions uint64
	// Computes counts compute functions actually run by GetOrCompute.
	Computes uint64
}

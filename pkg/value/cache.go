package value

import (
	"sync"

	"github.com/yourusername/bgsearch/pkg/engine"
)

// DefaultCacheSize is the default number of cached evaluations.
const DefaultCacheSize = 1 << 16

// MaxCacheSize is the largest table NewCached builds.
const MaxCacheSize = 1 << 20

// cacheKey packs a state and the evaluating side into eight words.
type cacheKey [8]uint32

// cacheEntry stores a cached evaluation result
type cacheEntry struct {
	key   cacheKey
	value float64
	valid bool
}

// cacheNode holds primary and secondary entries for two-way associative cache
type cacheNode struct {
	primary   cacheEntry
	secondary cacheEntry
}

// Cached memoises another function. It uses a fixed-size two-way
// associative table indexed by a MurmurHash3-style hash, so memory stays
// bounded and old entries are simply overwritten. Safe for concurrent use.
type Cached struct {
	inner    Function
	entries  []cacheNode
	hashMask uint32

	mu      sync.Mutex
	lookups uint64
	hits    uint64
}

// NewCached wraps inner with a cache of about size entries, rounded up to
// a power of two.
func NewCached(inner Function, size int) *Cached {
	if size < 2 {
		size = DefaultCacheSize
	}
	p := 2
	for p < size && p < MaxCacheSize {
		p <<= 1
	}
	return &Cached{
		inner:    inner,
		entries:  make([]cacheNode, p/2),
		hashMask: uint32(p/2) - 1,
	}
}

// Evaluate returns the cached score of (st, side), computing it on a miss.
func (c *Cached) Evaluate(st *engine.State, side engine.Side) float64 {
	key := keyOf(st, side)
	slot := hash(key) & c.hashMask

	c.mu.Lock()
	c.lookups++
	node := &c.entries[slot]
	if node.primary.valid && node.primary.key == key {
		c.hits++
		v := node.primary.value
		c.mu.Unlock()
		return v
	}
	if node.secondary.valid && node.secondary.key == key {
		c.hits++
		v := node.secondary.value
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	v := c.inner.Evaluate(st, side)

	// Move primary to secondary, add new as primary
	c.mu.Lock()
	node.secondary = node.primary
	node.primary = cacheEntry{key: key, value: v, valid: true}
	c.mu.Unlock()
	return v
}

func (c *Cached) Name() string {
	return c.inner.Name()
}

// Inner returns the memoised function.
func (c *Cached) Inner() Function {
	return c.inner
}

// Size returns the number of entries the table holds.
func (c *Cached) Size() int {
	return 2 * len(c.entries)
}

// Stats returns the number of lookups and hits so far.
func (c *Cached) Stats() (lookups, hits uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookups, c.hits
}

// Flush clears all entries and statistics.
func (c *Cached) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.lookups = 0
	c.hits = 0
}

func keyOf(st *engine.State, side engine.Side) cacheKey {
	var k cacheKey
	for i, v := range st.Points {
		k[i/4] |= uint32(uint8(v)) << (8 * (i % 4))
	}
	k[6] = uint32(uint8(st.Bar[0])) | uint32(uint8(st.Bar[1]))<<8 |
		uint32(uint8(st.Off[0]))<<16 | uint32(uint8(st.Off[1]))<<24
	k[7] = uint32(st.Turn) | uint32(side)<<8
	return k
}

// hash computes the hash key for a cache entry using MurmurHash3-style mixing
func hash(key cacheKey) uint32 {
	const c1 = 0xcc9e2d51
	const c2 = 0x1b873593

	h := uint32(0)
	for _, k := range key {
		k *= c1
		k = (k << 15) | (k >> 17)
		k *= c2

		h ^= k
		h = (h << 13) | (h >> 19)
		h = h*5 + 0xe6546b64
	}

	// Finalization
	h ^= uint32(len(key) * 4)
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	return h
}

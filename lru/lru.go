// Package lru implements the operation cache described in spec.md §4.1: a
// strict least-recently-used cache in front of a ZDD set operation, sized
// by a fixed capacity, that reports the evicted entry so the caller can
// release any reference it was holding on the evicted value's behalf.
//
// The eviction and promotion discipline itself is delegated to
// hashicorp/golang-lru's simplelru.LRU, which the wider Go ecosystem
// (including the retrieved hashicorp/nomad codebase) already relies on for
// exactly this kind of fixed-capacity cache.
package lru

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/xDarkicex/dpelim/errs"
)

// DefaultCapacity is the cache size spec.md §4.1 uses when a component
// doesn't configure its own.
const DefaultCapacity = 32

// Pair is a two-element cache key, used by the binary operation caches
// (package cnf's multiply and remove-supersets caches) that are keyed on a
// pair of operands.
type Pair[K comparable] struct {
	A, B K
}

// Cache is a fixed-capacity, strict-LRU map from K to V. The zero value is
// not usable; construct with New.
type Cache[K comparable, V any] struct {
	inner   *simplelru.LRU[K, V]
	evicted *evictedEntry[K, V]
}

type evictedEntry[K comparable, V any] struct {
	key   K
	value V
}

// New creates a Cache with the given capacity, which must be positive.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		errs.Panic("lru.New", "capacity must be positive, got %d", capacity)
	}
	c := &Cache[K, V]{}
	inner, err := simplelru.NewLRU[K, V](capacity, func(key K, value V) {
		c.evicted = &evictedEntry[K, V]{key: key, value: value}
	})
	if err != nil {
		// simplelru only errors on non-positive size, already guarded above.
		errs.Panic("lru.New", "%v", err)
	}
	c.inner = inner
	return c
}

// TryGet looks up key, promoting it to most-recently-used on a hit.
func (c *Cache[K, V]) TryGet(key K) (value V, ok bool) {
	return c.inner.Get(key)
}

// Add inserts or overwrites key -> value as the most-recently-used entry.
// If this insertion caused an existing entry to be evicted (because the
// cache was at capacity, or because key was already present, in which case
// its previous value is returned even if equal to the new one), Add returns
// that evicted (key, value) pair and evicted == true so the caller can
// release any resource the evicted value held a reference to.
func (c *Cache[K, V]) Add(key K, value V) (evictedKey K, evictedValue V, evicted bool) {
	c.evicted = nil
	wasOverwrite, hadPrevious := c.inner.Contains(key), false
	var prevValue V
	if wasOverwrite {
		prevValue, hadPrevious = c.inner.Peek(key)
	}

	c.inner.Add(key, value)

	if c.evicted != nil {
		e := c.evicted
		c.evicted = nil
		return e.key, e.value, true
	}
	if wasOverwrite && hadPrevious {
		return key, prevValue, true
	}
	var zeroK K
	var zeroV V
	return zeroK, zeroV, false
}

// Len returns the number of entries currently cached.
func (c *Cache[K, V]) Len() int { return c.inner.Len() }

// Purge empties the cache. The dropped entries are not reported to the
// caller the way Add reports an eviction.
func (c *Cache[K, V]) Purge() {
	c.inner.Purge()
	c.evicted = nil
}

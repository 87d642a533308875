package cnf

import (
	"github.com/xDarkicex/dpelim/lru"
	"github.com/xDarkicex/dpelim/zdd"
)

// protectingUnaryCache and protectingBinaryCache wrap an lru.Cache so that
// every stored ref is protected against kernel compaction for as long as
// it stays cached, and unprotected the moment it's evicted — the same
// discipline original_source's store_in_unary_cache/store_in_binary_cache
// implement around Sylvan's zdd_protect/zdd_unprotect.
type protectingUnaryCache struct {
	k     *zdd.Kernel
	cache *lru.Cache[zdd.Ref, zdd.Ref]
}

func newProtectingUnaryCache(k *zdd.Kernel, capacity int) *protectingUnaryCache {
	return &protectingUnaryCache{k: k, cache: lru.New[zdd.Ref, zdd.Ref](capacity)}
}

func (c *protectingUnaryCache) get(key zdd.Ref) (zdd.Ref, bool) {
	return c.cache.TryGet(key)
}

func (c *protectingUnaryCache) put(key, value zdd.Ref) {
	c.k.Protect(key)
	c.k.Protect(value)
	if evKey, evValue, evicted := c.cache.Add(key, value); evicted {
		c.k.Unprotect(evKey)
		c.k.Unprotect(evValue)
	}
}

type pairKey = lru.Pair[zdd.Ref]

type protectingBinaryCache struct {
	k     *zdd.Kernel
	cache *lru.Cache[pairKey, zdd.Ref]
}

func newProtectingBinaryCache(k *zdd.Kernel, capacity int) *protectingBinaryCache {
	return &protectingBinaryCache{k: k, cache: lru.New[pairKey, zdd.Ref](capacity)}
}

func (c *protectingBinaryCache) get(p, q zdd.Ref) (zdd.Ref, bool) {
	return c.cache.TryGet(pairKey{A: p, B: q})
}

func (c *protectingBinaryCache) put(p, q, value zdd.Ref) {
	c.k.Protect(p)
	c.k.Protect(q)
	c.k.Protect(value)
	if evKey, evValue, evicted := c.cache.Add(pairKey{A: p, B: q}, value); evicted {
		c.k.Unprotect(evKey.A)
		c.k.Unprotect(evKey.B)
		c.k.Unprotect(evValue)
	}
}

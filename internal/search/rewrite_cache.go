// Package search implements the unified Documents/Memories/Hybrid
// retrieval pipeline: optional query rewrite, embedding, Store
// similarity search, merge/dedup/ordering, and optional reranking.
package search

import (
	"hash/fnv"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RewriteCache memoizes successful query rewrites keyed by a stable
// hash of the original query text, bounding memory use with an LRU
// eviction policy instead of an unbounded map.
type RewriteCache struct {
	cache *lru.Cache[uint64, string]
}

// NewRewriteCache builds a cache with the given capacity. A
// non-positive size falls back to 1000, the configured default.
func NewRewriteCache(size int) (*RewriteCache, error) {
	if size <= 0 {
		size = 1000
	}
	c, err := lru.New[uint64, string](size)
	if err != nil {
		return nil, err
	}
	return &RewriteCache{cache: c}, nil
}

func hashQuery(q string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(q))
	return h.Sum64()
}

func (c *RewriteCache) Get(query string) (string, bool) {
	return c.cache.Get(hashQuery(query))
}

func (c *RewriteCache) Put(query, rewritten string) {
	c.cache.Add(hashQuery(query), rewritten)
}

package catalog

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"goleet/internal/core"
)

// DefaultDetailCapacity bounds the detail cache when no capacity is
// configured.
const DefaultDetailCapacity = 500

// DetailCache is a bounded LRU of per-problem detail records keyed by
// question id. Records have no expiry: a cached detail is served as-is until
// capacity pressure evicts it, trading freshness of slow-moving fields like
// like counts for zero upstream traffic on repeat lookups.
type DetailCache struct {
	lru *lru.Cache[string, *core.ProblemDetail]
}

// NewDetailCache creates a detail cache holding at most capacity records.
// A non-positive capacity falls back to DefaultDetailCapacity.
func NewDetailCache(capacity int) *DetailCache {
	if capacity <= 0 {
		capacity = DefaultDetailCapacity
	}
	c, _ := lru.New[string, *core.ProblemDetail](capacity)
	return &DetailCache{lru: c}
}

// Get returns the cached detail for id and marks it most recently used.
func (d *DetailCache) Get(id string) (*core.ProblemDetail, bool) {
	return d.lru.Get(id)
}

// Set stores detail under id, overwriting any previous record. At capacity
// the least recently used record is evicted to make room.
func (d *DetailCache) Set(id string, detail *core.ProblemDetail) {
	d.lru.Add(id, detail)
}

// Contains reports whether id is cached without affecting recency.
func (d *DetailCache) Contains(id string) bool {
	return d.lru.Contains(id)
}

// Len returns the number of cached records.
func (d *DetailCache) Len() int {
	return d.lru.Len()
}

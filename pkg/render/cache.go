package render

import "github.com/go-fern/fern/pkg/graphics"

// NoSiblingCount marks a cache key for a child whose parent arity does
// not size children by sibling count (Leaf and Single parents).
const NoSiblingCount = -1

// LayoutCacheKey identifies one cached layout computation. SiblingCount
// participates only for children of Multi-arity parents, because some
// multi-child layouts size a child differently depending on how many
// siblings it has.
type LayoutCacheKey struct {
	ID           ElementID
	Constraints  graphics.Constraints
	SiblingCount int
}

// LayoutResult is the cached outcome of a layout computation. The entry
// is authoritative only while NeedsLayout is false.
type LayoutResult struct {
	Size        graphics.Size
	NeedsLayout bool
}

// LayoutCache memoizes child layout computations keyed on structural
// identity. Invalidation is by element: marking an element layout-dirty
// drops every entry recorded for it, regardless of constraints.
type LayoutCache struct {
	entries   map[LayoutCacheKey]LayoutResult
	byElement map[ElementID]map[LayoutCacheKey]struct{}

	hits   uint64
	misses uint64
}

// NewLayoutCache creates an empty cache.
func NewLayoutCache() *LayoutCache {
	return &LayoutCache{
		entries:   make(map[LayoutCacheKey]LayoutResult),
		byElement: make(map[ElementID]map[LayoutCacheKey]struct{}),
	}
}

// Get returns the cached result for the key, if present. A hit with
// NeedsLayout set is not authoritative and counts as a miss.
func (c *LayoutCache) Get(key LayoutCacheKey) (LayoutResult, bool) {
	result, ok := c.entries[key]
	if !ok || result.NeedsLayout {
		c.misses++
		return LayoutResult{}, false
	}
	c.hits++
	return result, true
}

// Store records a layout result for the key.
func (c *LayoutCache) Store(key LayoutCacheKey, result LayoutResult) {
	c.entries[key] = result
	keys := c.byElement[key.ID]
	if keys == nil {
		keys = make(map[LayoutCacheKey]struct{})
		c.byElement[key.ID] = keys
	}
	keys[key] = struct{}{}
}

// Invalidate drops every entry recorded for the element. Called when the
// element is marked layout-dirty or removed from the tree.
func (c *LayoutCache) Invalidate(id ElementID) {
	keys, ok := c.byElement[id]
	if !ok {
		return
	}
	for key := range keys {
		delete(c.entries, key)
	}
	delete(c.byElement, id)
}

// Len returns the number of live entries.
func (c *LayoutCache) Len() int {
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *LayoutCache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

// Clear empties the cache and resets the counters.
func (c *LayoutCache) Clear() {
	clear(c.entries)
	clear(c.byElement)
	c.hits = 0
	c.misses = 0
}

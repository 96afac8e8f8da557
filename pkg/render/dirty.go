package render

import "container/heap"

// DirtyOrder selects which end of the depth range a DirtySet yields first.
type DirtyOrder int

const (
	// ShallowestFirst yields elements closest to the root first. Build
	// and layout use this: parents stabilize before their descendants.
	ShallowestFirst DirtyOrder = iota
	// DeepestFirst yields the deepest elements first. Paint uses this so
	// child layers exist before their parents capture them.
	DeepestFirst
)

// DirtySet tracks the elements pending reprocessing in one phase. Members
// are deduplicated; extraction order is by cached depth according to the
// set's DirtyOrder, with the handle as a tiebreak for determinism.
type DirtySet struct {
	order DirtyOrder
	heap  dirtyHeap

	// members maps each live id to its current depth. Heap entries whose
	// depth disagrees are stale (discarded, or re-added elsewhere after a
	// reparent) and are skipped on extraction.
	members map[ElementID]int
}

// NewDirtySet creates an empty set with the given extraction order.
func NewDirtySet(order DirtyOrder) *DirtySet {
	return &DirtySet{
		order:   order,
		members: make(map[ElementID]int),
	}
}

// Add inserts the element at the given depth. Returns false if it was
// already a member; a member re-added at a different depth keeps its
// membership but moves to the new depth.
func (s *DirtySet) Add(id ElementID, depth int) bool {
	prev, exists := s.members[id]
	if exists && prev == depth {
		return false
	}
	s.members[id] = depth
	heap.Push(&s.heap, dirtyEntry{id: id, depth: depth, order: s.order})
	return !exists
}

// Contains reports membership.
func (s *DirtySet) Contains(id ElementID) bool {
	_, exists := s.members[id]
	return exists
}

// Discard removes the element without processing it. The heap entry is
// dropped lazily on extraction.
func (s *DirtySet) Discard(id ElementID) {
	delete(s.members, id)
}

// Take removes and returns the next element in the set's order.
func (s *DirtySet) Take() (ElementID, bool) {
	for s.heap.Len() > 0 {
		entry := heap.Pop(&s.heap).(dirtyEntry)
		if depth, live := s.members[entry.id]; !live || depth != entry.depth {
			continue // discarded or re-added at another depth, stale entry
		}
		delete(s.members, entry.id)
		return entry.id, true
	}
	return NilElement, false
}

// Len returns the number of live members.
func (s *DirtySet) Len() int {
	return len(s.members)
}

// Clear empties the set.
func (s *DirtySet) Clear() {
	s.heap = s.heap[:0]
	clear(s.members)
}

type dirtyEntry struct {
	id    ElementID
	depth int
	order DirtyOrder
}

type dirtyHeap []dirtyEntry

func (h dirtyHeap) Len() int { return len(h) }

func (h dirtyHeap) Less(i, j int) bool {
	if h[i].depth != h[j].depth {
		if h[i].order == DeepestFirst {
			return h[i].depth > h[j].depth
		}
		return h[i].depth < h[j].depth
	}
	return h[i].id < h[j].id
}

func (h dirtyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *dirtyHeap) Push(x any) { *h = append(*h, x.(dirtyEntry)) }

func (h *dirtyHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

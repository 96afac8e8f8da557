// Package render owns the element arena, the arity-typed layout and paint
// protocol, and the layout cache. Elements are addressed by stable handles
// into the arena; layout and paint never hold direct references across
// elements, so a parent laying out a child touches two disjoint slots
// rather than aliasing one.
package render

import "fmt"

// ElementID is an opaque stable handle into the element arena. It packs a
// slot index with a generation counter; a handle is only valid while the
// element it was issued for is alive, so stale handles from removed
// elements are detected instead of silently resolving to a reused slot.
type ElementID uint64

// NilElement is the zero handle. It never resolves to an element.
const NilElement ElementID = 0

func makeElementID(slot, generation uint32) ElementID {
	return ElementID(uint64(generation)<<32 | uint64(slot))
}

func (id ElementID) slot() uint32 {
	return uint32(id)
}

func (id ElementID) generation() uint32 {
	return uint32(id >> 32)
}

// IsNil returns true for the zero handle.
func (id ElementID) IsNil() bool {
	return id == NilElement
}

func (id ElementID) String() string {
	if id.IsNil() {
		return "Element(nil)"
	}
	return fmt.Sprintf("Element(%d.%d)", id.slot(), id.generation())
}

package render

import (
	"fmt"
	"sync"
)

// Tree is the element arena. It exclusively owns every element; handles
// are slot indices with generation checks, so disjoint mutable access
// into the arena (a parent laying out a child) never aliases.
//
// Locking discipline: ancestor walks (provider lookups) take the read
// lock and may run concurrently during a parallel build; depth queries
// take the write lock because the memoized depth is element state;
// structural mutation of any subtree takes the write lock only for the
// duration of the individual link update, so rebuilds of unrelated
// subtrees interleave instead of serializing behind one another.
// Layout and paint phases are single-threaded and tree-exclusive.
type Tree struct {
	mu    sync.RWMutex
	slots []slot
	free  []uint32
	count int
	root  ElementID
}

type slot struct {
	el         *Element
	generation uint32
}

// NewTree creates an empty element arena.
func NewTree() *Tree {
	return &Tree{}
}

// Len returns the number of live elements.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Root returns the root element handle, or NilElement for an empty tree.
func (t *Tree) Root() ElementID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Insert creates a new element under parent and returns its handle. A nil
// parent installs the element as the root; inserting a second root is a
// programming error. The parent's arity contract is enforced here: adding
// a child to a Leaf parent, or a second child to a Single parent, panics.
func (t *Tree) Insert(parent ElementID, config Config, variant RenderVariant) ElementID {
	t.mu.Lock()
	defer t.mu.Unlock()

	var parentEl *Element
	if parent.IsNil() {
		if !t.root.IsNil() {
			panic("render: tree already has a root")
		}
	} else {
		parentEl = t.mustGetLocked(parent)
		t.checkChildCapacityLocked(parentEl, 1)
	}

	id := t.allocLocked()
	el := &Element{
		id:          id,
		config:      config,
		variant:     variant,
		parent:      parent,
		lifecycle:   LifecycleInitial,
		needsBuild:  true,
		needsLayout: true,
		needsPaint:  true,
	}
	t.slots[id.slot()].el = el

	if parentEl == nil {
		t.root = id
		el.depth = 0
		el.depthValid = true
	} else {
		parentEl.children = append(parentEl.children, id)
	}
	el.transition(LifecycleActive)
	t.count++
	return id
}

// Remove destroys a single element with no children. Calling it on an
// element that still has live children is a programming error signaled by
// panic; recursive teardown goes through Unmount.
func (t *Tree) Remove(id ElementID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el := t.mustGetLocked(id)
	if len(el.children) > 0 {
		panic(fmt.Sprintf("render: Remove(%s) with %d live children; detach children first or use Unmount",
			id, len(el.children)))
	}
	t.destroyLocked(el)
}

// Unmount recursively destroys the element and its subtree, returning the
// handles that became defunct (deepest first) so the caller can purge
// cache entries and dirty-set membership.
func (t *Tree) Unmount(id ElementID) []ElementID {
	t.mu.Lock()
	defer t.mu.Unlock()

	el := t.getLocked(id)
	if el == nil {
		return nil
	}
	var removed []ElementID
	t.unmountLocked(el, &removed)
	return removed
}

func (t *Tree) unmountLocked(el *Element, removed *[]ElementID) {
	for _, child := range el.children {
		if childEl := t.getLocked(child); childEl != nil {
			t.unmountLocked(childEl, removed)
		}
	}
	el.children = nil
	t.destroyLocked(el)
	*removed = append(*removed, el.id)
}

// destroyLocked transitions the element to Defunct, severs its links, and
// releases its slot. The element must have no remaining children.
func (t *Tree) destroyLocked(el *Element) {
	el.transition(LifecycleDefunct)

	if parentEl := t.getLocked(el.parent); parentEl != nil {
		parentEl.children = removeChildLink(parentEl.children, el.id)
	}
	if t.root == el.id {
		t.root = NilElement
	}

	// Drop provider registrations in both directions.
	for providerID := range el.dependencies {
		if p := t.getLocked(providerID); p != nil && p.provider != nil {
			delete(p.provider.dependents, el.id)
		}
	}
	el.dependencies = nil
	el.provider = nil
	el.layer = nil

	idx := el.id.slot()
	t.slots[idx].el = nil
	t.slots[idx].generation++
	t.free = append(t.free, idx)
	t.count--
}

// Deactivate temporarily detaches the element from its parent, moving its
// whole subtree to the Inactive state. The element can be reattached with
// Reattach before the frame completes, or swept by SweepDetached.
func (t *Tree) Deactivate(id ElementID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el := t.mustGetLocked(id)
	if parentEl := t.getLocked(el.parent); parentEl != nil {
		parentEl.children = removeChildLink(parentEl.children, el.id)
	}
	if t.root == id {
		t.root = NilElement
	}
	el.parent = NilElement
	t.eachInSubtreeLocked(el, func(e *Element) {
		if e.lifecycle == LifecycleActive {
			e.transition(LifecycleInactive)
		}
	})
}

// Reattach reinserts a previously deactivated element under a new parent,
// reactivating its subtree. Depth caches below the element are
// invalidated and recomputed lazily.
func (t *Tree) Reattach(id, parent ElementID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el := t.mustGetLocked(id)
	if el.lifecycle != LifecycleInactive {
		panic(fmt.Sprintf("render: Reattach(%s) on %s element", id, el.lifecycle))
	}
	parentEl := t.mustGetLocked(parent)
	t.checkChildCapacityLocked(parentEl, 1)

	parentEl.children = append(parentEl.children, id)
	el.parent = parent
	t.eachInSubtreeLocked(el, func(e *Element) {
		if e.lifecycle == LifecycleInactive {
			e.transition(LifecycleActive)
		}
		e.depthValid = false
	})
}

// SweepDetached destroys every subtree left inactive and detached at the
// end of a frame. Returns the defuncted handles for cache purging.
func (t *Tree) SweepDetached() []ElementID {
	t.mu.Lock()
	defer t.mu.Unlock()

	var roots []*Element
	for i := range t.slots {
		el := t.slots[i].el
		if el != nil && el.lifecycle == LifecycleInactive && el.parent.IsNil() {
			roots = append(roots, el)
		}
	}
	var removed []ElementID
	for _, el := range roots {
		t.unmountLocked(el, &removed)
	}
	return removed
}

// Get resolves a handle to its element. Returns nil for stale or nil
// handles.
func (t *Tree) Get(id ElementID) *Element {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getLocked(id)
}

// Children returns a copy of the element's child handles in order.
func (t *Tree) Children(id ElementID) []ElementID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	el := t.getLocked(id)
	if el == nil || len(el.children) == 0 {
		return nil
	}
	out := make([]ElementID, len(el.children))
	copy(out, el.children)
	return out
}

// Parent returns the element's parent handle.
func (t *Tree) Parent(id ElementID) ElementID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	el := t.getLocked(id)
	if el == nil {
		return NilElement
	}
	return el.parent
}

// Depth returns the element's depth (root = 0). Depths are cached and
// recomputed lazily after reparenting; the memoization writes element
// state, so this takes the write lock.
func (t *Tree) Depth(id ElementID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	el := t.getLocked(id)
	if el == nil {
		return 0
	}
	return t.depthLocked(el)
}

func (t *Tree) depthLocked(el *Element) int {
	if el.depthValid {
		return el.depth
	}
	depth := 0
	if parentEl := t.getLocked(el.parent); parentEl != nil {
		depth = t.depthLocked(parentEl) + 1
	}
	el.depth = depth
	el.depthValid = true
	return depth
}

// VisitAncestors walks from the element's parent toward the root, calling
// the visitor for each ancestor until it returns false or the root is
// passed.
func (t *Tree) VisitAncestors(id ElementID, visitor func(ElementID, *Element) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	el := t.getLocked(id)
	if el == nil {
		return
	}
	current := t.getLocked(el.parent)
	for current != nil {
		if !visitor(current.id, current) {
			return
		}
		current = t.getLocked(current.parent)
	}
}

// SetProvider installs (or replaces) a typed provider value on the
// element and returns the previous value, if any. Registered dependents
// survive a value replacement so they can be notified of the change.
func (t *Tree) SetProvider(id ElementID, key ProviderKey, value any) (old any, had bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	el := t.mustGetLocked(id)
	if el.provider != nil && el.provider.key == key {
		old, had = el.provider.value, true
		el.provider.value = value
		return old, had
	}
	el.provider = &providerRecord{
		key:        key,
		value:      value,
		dependents: make(map[ElementID]struct{}),
	}
	return nil, false
}

// FindProvider walks the ancestors of start looking for the nearest
// provider of the given key. Returns the provider element and its value.
func (t *Tree) FindProvider(start ElementID, key ProviderKey) (ElementID, any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	el := t.getLocked(start)
	if el == nil {
		return NilElement, nil, false
	}
	current := t.getLocked(el.parent)
	for current != nil {
		if current.provider != nil && current.provider.key == key {
			return current.id, current.provider.value, true
		}
		current = t.getLocked(current.parent)
	}
	return NilElement, nil, false
}

// AddProviderDependent registers dependent to be notified when the
// provider's value changes.
func (t *Tree) AddProviderDependent(providerID, dependent ElementID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.mustGetLocked(providerID)
	if p.provider == nil {
		panic(fmt.Sprintf("render: %s is not a provider", providerID))
	}
	p.provider.dependents[dependent] = struct{}{}

	dep := t.mustGetLocked(dependent)
	if dep.dependencies == nil {
		dep.dependencies = make(map[ElementID]struct{})
	}
	dep.dependencies[providerID] = struct{}{}
}

// ProviderDependents returns the registered dependents of a provider.
func (t *Tree) ProviderDependents(id ElementID) []ElementID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	el := t.getLocked(id)
	if el == nil || el.provider == nil {
		return nil
	}
	out := make([]ElementID, 0, len(el.provider.dependents))
	for dep := range el.provider.dependents {
		out = append(out, dep)
	}
	return out
}

func (t *Tree) allocLocked() ElementID {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		return makeElementID(idx, t.slots[idx].generation)
	}
	idx := uint32(len(t.slots))
	// Generation starts at 1 so the packed handle is never zero.
	t.slots = append(t.slots, slot{generation: 1})
	return makeElementID(idx, 1)
}

func (t *Tree) getLocked(id ElementID) *Element {
	if id.IsNil() {
		return nil
	}
	idx := id.slot()
	if int(idx) >= len(t.slots) {
		return nil
	}
	s := &t.slots[idx]
	if s.el == nil || s.generation != id.generation() {
		return nil
	}
	return s.el
}

func (t *Tree) mustGetLocked(id ElementID) *Element {
	el := t.getLocked(id)
	if el == nil {
		panic(fmt.Sprintf("render: stale or unknown element handle %s", id))
	}
	return el
}

// checkChildCapacityLocked enforces the parent's arity contract for the
// addition of extra children.
func (t *Tree) checkChildCapacityLocked(parent *Element, extra int) {
	if !parent.variant.Arity().ValidChildCount(len(parent.children) + extra) {
		panic(fmt.Sprintf("render: %s arity %s cannot hold %d children",
			parent.id, parent.variant.Arity(), len(parent.children)+extra))
	}
}

func (t *Tree) eachInSubtreeLocked(el *Element, fn func(*Element)) {
	fn(el)
	for _, child := range el.children {
		if childEl := t.getLocked(child); childEl != nil {
			t.eachInSubtreeLocked(childEl, fn)
		}
	}
}

func removeChildLink(children []ElementID, id ElementID) []ElementID {
	for i, child := range children {
		if child == id {
			return append(children[:i], children[i+1:]...)
		}
	}
	return children
}

package render

import (
	"fmt"

	"github.com/go-fern/fern/pkg/errors"
	"github.com/go-fern/fern/pkg/graphics"
)

// layoutPass carries the state shared by every layout context in one
// layout flush: the tree, the cache, the violation policy, and the list
// of elements laid out so far (the caller marks those for paint).
type layoutPass struct {
	tree    *Tree
	cache   *LayoutCache
	strict  bool
	laidOut []ElementID
}

// LayoutContext is the arity-independent facade over the tree available
// to every render object during layout. A leaf render object sees only
// this surface: its own constraints and identity.
type LayoutContext struct {
	pass        *layoutPass
	id          ElementID
	constraints graphics.Constraints
}

// Constraints returns the constraints passed to this element.
func (cx *LayoutContext) Constraints() graphics.Constraints { return cx.constraints }

// ElementID returns the element being laid out.
func (cx *LayoutContext) ElementID() ElementID { return cx.id }

// Tree returns the element tree, for read-only queries.
func (cx *LayoutContext) Tree() *Tree { return cx.pass.tree }

// LeafLayoutContext is the layout facade for Leaf arity. It adds nothing
// to the base surface: a leaf has no children to lay out.
type LeafLayoutContext struct {
	LayoutContext
}

// SingleChildLayoutContext is the layout facade for Single arity.
type SingleChildLayoutContext struct {
	LayoutContext
	child ElementID
}

// Child returns the element's only child.
func (cx *SingleChildLayoutContext) Child() ElementID { return cx.child }

// LayoutChild lays out the child with the given constraints, consulting
// the layout cache first. The returned size satisfies the constraints.
func (cx *SingleChildLayoutContext) LayoutChild(child ElementID, constraints graphics.Constraints) (graphics.Size, error) {
	return cx.pass.layoutChild(child, constraints, NoSiblingCount)
}

// PositionChild assigns the child's offset within this element.
func (cx *SingleChildLayoutContext) PositionChild(child ElementID, offset graphics.Offset) {
	cx.pass.positionChild(cx.id, child, offset)
}

// MultiChildLayoutContext is the layout facade for Multi arity.
type MultiChildLayoutContext struct {
	LayoutContext
	children []ElementID
}

// Children returns the element's children in order.
func (cx *MultiChildLayoutContext) Children() []ElementID { return cx.children }

// ChildCount returns the number of children.
func (cx *MultiChildLayoutContext) ChildCount() int { return len(cx.children) }

// LayoutChild lays out one child with the given constraints. The cache
// key includes the sibling count, because multi-child layouts may size a
// child differently depending on how many siblings it has.
func (cx *MultiChildLayoutContext) LayoutChild(child ElementID, constraints graphics.Constraints) (graphics.Size, error) {
	return cx.pass.layoutChild(child, constraints, len(cx.children))
}

// PositionChild assigns the child's offset within this element.
func (cx *MultiChildLayoutContext) PositionChild(child ElementID, offset graphics.Offset) {
	cx.pass.positionChild(cx.id, child, offset)
}

// LayoutElement lays out the element with the given constraints,
// recursing through the arity-typed contexts. It returns the computed
// size and the handles of every element whose layout actually ran, in
// completion order, so the caller can mark them for paint.
//
// Constraint violations follow the strict flag: strict mode returns the
// error, lenient mode reports it and substitutes the nearest valid size.
// Arity mismatches are always returned as fatal errors.
func LayoutElement(tree *Tree, cache *LayoutCache, id ElementID, constraints graphics.Constraints, strict bool) (graphics.Size, []ElementID, error) {
	pass := &layoutPass{tree: tree, cache: cache, strict: strict}
	size, err := pass.layoutElement(id, constraints)
	return size, pass.laidOut, err
}

func (p *layoutPass) layoutElement(id ElementID, constraints graphics.Constraints) (graphics.Size, error) {
	el := p.tree.Get(id)
	if el == nil {
		panic(fmt.Sprintf("render: layout of stale element handle %s", id))
	}

	// Clean elements re-laid-out under unchanged constraints keep their
	// size. This is the key incremental property: unchanged subtrees are
	// skipped entirely.
	if !el.needsLayout && el.hasConstraints && el.constraints == constraints {
		return el.size, nil
	}

	children := p.tree.Children(id)
	variant := el.Variant()
	if !variant.Arity().ValidChildCount(len(children)) {
		return graphics.Size{}, &errors.LayoutError{
			Kind:    errors.ArityMismatch,
			Element: uint64(id),
			Detail: fmt.Sprintf("declared arity %s, actual child count %d",
				variant.Arity(), len(children)),
		}
	}

	var size graphics.Size
	var err error
	switch variant.Arity() {
	case ArityLeaf:
		cx := &LeafLayoutContext{LayoutContext{pass: p, id: id, constraints: constraints}}
		size, err = variant.Leaf().Layout(cx)
	case AritySingle:
		cx := &SingleChildLayoutContext{
			LayoutContext: LayoutContext{pass: p, id: id, constraints: constraints},
			child:         children[0],
		}
		size, err = variant.Single().Layout(cx)
	case ArityMulti:
		cx := &MultiChildLayoutContext{
			LayoutContext: LayoutContext{pass: p, id: id, constraints: constraints},
			children:      children,
		}
		size, err = variant.Multi().Layout(cx)
	}
	if err != nil {
		return graphics.Size{}, err
	}

	if !constraints.IsSatisfiedBy(size) {
		violation := &errors.LayoutError{
			Kind:    errors.ConstraintViolation,
			Element: uint64(id),
			Detail:  fmt.Sprintf("returned %+v outside %v", size, constraints),
		}
		if p.strict {
			return graphics.Size{}, violation
		}
		errors.ReportLayoutError(violation)
		size = constraints.Constrain(size)
	}

	el.size = size
	el.constraints = constraints
	el.hasConstraints = true
	el.needsLayout = false
	p.laidOut = append(p.laidOut, id)
	return size, nil
}

// layoutChild probes the cache before recursing into the child. A hit
// returns the cached size without touching the child's render object.
func (p *layoutPass) layoutChild(child ElementID, constraints graphics.Constraints, siblingCount int) (graphics.Size, error) {
	key := LayoutCacheKey{ID: child, Constraints: constraints, SiblingCount: siblingCount}

	el := p.tree.Get(child)
	if el == nil {
		panic(fmt.Sprintf("render: layout of stale child handle %s", child))
	}
	if !el.needsLayout {
		if result, ok := p.cache.Get(key); ok {
			return result.Size, nil
		}
	}

	size, err := p.layoutElement(child, constraints)
	if err != nil {
		return graphics.Size{}, err
	}
	p.cache.Store(key, LayoutResult{Size: size})
	return size, nil
}

// positionChild records the child's offset within its parent. A moved
// child keeps its own (origin-relative) layer; only the parent's layer
// embeds child positions, and the parent repaints after its own layout.
func (p *layoutPass) positionChild(parent, child ElementID, offset graphics.Offset) {
	el := p.tree.Get(child)
	if el == nil {
		panic(fmt.Sprintf("render: positioning stale child handle %s", child))
	}
	if el.parent != parent {
		panic(fmt.Sprintf("render: %s positioned by %s, which is not its parent", child, parent))
	}
	el.offset = offset
}

// MarkLayoutDirty marks the element layout-dirty, invalidates its cache
// entries, and propagates the mark to ancestors whose size may depend on
// it. The walk stops at a relayout boundary: an element laid out under
// tight constraints cannot change size, so its ancestors are unaffected.
func MarkLayoutDirty(tree *Tree, cache *LayoutCache, set *DirtySet, id ElementID) {
	el := tree.Get(id)
	if el == nil || el.lifecycle == LifecycleDefunct {
		return
	}
	if set.Contains(id) && el.needsLayout {
		return
	}
	el.needsLayout = true
	cache.Invalidate(id)
	set.Add(id, tree.Depth(id))

	if el.hasTightConstraints() {
		return
	}
	if parent := el.parent; !parent.IsNil() {
		MarkLayoutDirty(tree, cache, set, parent)
	}
}

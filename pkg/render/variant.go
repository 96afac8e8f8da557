package render

import (
	"fmt"

	"github.com/go-fern/fern/pkg/graphics"
)

// Arity is the fixed child-cardinality contract of a render object.
type Arity int

const (
	// ArityLeaf admits zero children.
	ArityLeaf Arity = iota
	// AritySingle admits exactly one child.
	AritySingle
	// ArityMulti admits any number of children, including zero.
	ArityMulti
)

func (a Arity) String() string {
	switch a {
	case ArityLeaf:
		return "leaf"
	case AritySingle:
		return "single"
	case ArityMulti:
		return "multi"
	default:
		return "invalid"
	}
}

// ValidChildCount reports whether the arity admits the given child count.
func (a Arity) ValidChildCount(count int) bool {
	switch a {
	case ArityLeaf:
		return count == 0
	case AritySingle:
		return count == 1
	default:
		return count >= 0
	}
}

// LeafRenderObject measures and draws an element with no children. A leaf
// can only consult its own constraints; its context exposes no child
// operations.
type LeafRenderObject interface {
	Layout(cx *LeafLayoutContext) (graphics.Size, error)
	Paint(cx *LeafPaintContext) (graphics.Layer, error)
}

// SingleChildRenderObject measures and draws an element with exactly one
// child. Its contexts add Child, LayoutChild, and CaptureChildLayer.
type SingleChildRenderObject interface {
	Layout(cx *SingleChildLayoutContext) (graphics.Size, error)
	Paint(cx *SingleChildPaintContext) (graphics.Layer, error)
}

// MultiChildRenderObject measures and draws an element with an arbitrary
// number of children.
type MultiChildRenderObject interface {
	Layout(cx *MultiChildLayoutContext) (graphics.Size, error)
	Paint(cx *MultiChildPaintContext) (graphics.Layer, error)
}

// RenderVariant is the closed tagged union binding an element to its
// render object. The arity contract lives in the tag; only the
// "what to measure and draw" body is polymorphic.
type RenderVariant struct {
	arity  Arity
	leaf   LeafRenderObject
	single SingleChildRenderObject
	multi  MultiChildRenderObject
}

// LeafVariant wraps a leaf render object.
func LeafVariant(body LeafRenderObject) RenderVariant {
	if body == nil {
		panic("render: nil leaf render object")
	}
	return RenderVariant{arity: ArityLeaf, leaf: body}
}

// SingleVariant wraps a single-child render object.
func SingleVariant(body SingleChildRenderObject) RenderVariant {
	if body == nil {
		panic("render: nil single-child render object")
	}
	return RenderVariant{arity: AritySingle, single: body}
}

// MultiVariant wraps a multi-child render object.
func MultiVariant(body MultiChildRenderObject) RenderVariant {
	if body == nil {
		panic("render: nil multi-child render object")
	}
	return RenderVariant{arity: ArityMulti, multi: body}
}

// Arity returns the variant's child-cardinality contract.
func (v RenderVariant) Arity() Arity { return v.arity }

// IsZero reports whether the variant holds no render object.
func (v RenderVariant) IsZero() bool {
	return v.leaf == nil && v.single == nil && v.multi == nil
}

// Leaf returns the leaf body, panicking on arity misuse.
func (v RenderVariant) Leaf() LeafRenderObject {
	if v.arity != ArityLeaf || v.leaf == nil {
		panic(fmt.Sprintf("render: variant is %s, not leaf", v.arity))
	}
	return v.leaf
}

// Single returns the single-child body, panicking on arity misuse.
func (v RenderVariant) Single() SingleChildRenderObject {
	if v.arity != AritySingle || v.single == nil {
		panic(fmt.Sprintf("render: variant is %s, not single", v.arity))
	}
	return v.single
}

// Multi returns the multi-child body, panicking on arity misuse.
func (v RenderVariant) Multi() MultiChildRenderObject {
	if v.arity != ArityMulti || v.multi == nil {
		panic(fmt.Sprintf("render: variant is %s, not multi", v.arity))
	}
	return v.multi
}

package render

import (
	"fmt"

	"github.com/go-fern/fern/pkg/errors"
	"github.com/go-fern/fern/pkg/graphics"
)

// paintPass carries the state shared by every paint context in one paint
// flush: the tree and the frame number used to validate child captures.
type paintPass struct {
	tree  *Tree
	frame uint64
}

// PaintContext is the arity-independent facade available to every render
// object during paint. It exposes the element's layout results and a
// recording canvas; layers produced through it are origin-relative, with
// the element's own offset applied by the parent at capture time.
type PaintContext struct {
	pass   *paintPass
	id     ElementID
	size   graphics.Size
	offset graphics.Offset

	recorder graphics.PictureRecorder
	canvas   graphics.Canvas
}

// ElementID returns the element being painted.
func (cx *PaintContext) ElementID() ElementID { return cx.id }

// Size returns the size computed by the last layout.
func (cx *PaintContext) Size() graphics.Size { return cx.size }

// Offset returns the position the parent assigned during layout. Drawing
// ignores it; the capture machinery applies it.
func (cx *PaintContext) Offset() graphics.Offset { return cx.offset }

// Tree returns the element tree, for read-only queries.
func (cx *PaintContext) Tree() *Tree { return cx.pass.tree }

// Canvas returns the recording canvas, starting a recording on first use.
func (cx *PaintContext) Canvas() graphics.Canvas {
	if cx.canvas == nil {
		cx.canvas = cx.recorder.BeginRecording(cx.size)
	}
	return cx.canvas
}

// Finish ends the recording and returns it as a picture layer, or nil if
// nothing was drawn.
func (cx *PaintContext) Finish() graphics.Layer {
	if cx.canvas == nil {
		return nil
	}
	cx.canvas = nil
	return graphics.NewPictureLayer(cx.recorder.EndRecording(), graphics.Offset{})
}

// LeafPaintContext is the paint facade for Leaf arity. A leaf draws onto
// the canvas and returns Finish(); it has no children to capture.
type LeafPaintContext struct {
	PaintContext
}

// SingleChildPaintContext is the paint facade for Single arity.
type SingleChildPaintContext struct {
	PaintContext
	child ElementID
}

// Child returns the element's only child.
func (cx *SingleChildPaintContext) Child() ElementID { return cx.child }

// CaptureChildLayer returns the child's current layer for inclusion in
// this element's output. See paintPass.captureChildLayer for validity.
func (cx *SingleChildPaintContext) CaptureChildLayer(child ElementID) (graphics.Layer, error) {
	return cx.pass.captureChildLayer(cx.id, child)
}

// MultiChildPaintContext is the paint facade for Multi arity.
type MultiChildPaintContext struct {
	PaintContext
	children []ElementID
}

// Children returns the element's children in order.
func (cx *MultiChildPaintContext) Children() []ElementID { return cx.children }

// ChildCount returns the number of children.
func (cx *MultiChildPaintContext) ChildCount() int { return len(cx.children) }

// CaptureChildLayer returns one child's current layer for inclusion in
// this element's output.
func (cx *MultiChildPaintContext) CaptureChildLayer(child ElementID) (graphics.Layer, error) {
	return cx.pass.captureChildLayer(cx.id, child)
}

// captureChildLayer hands the parent the child's layer. The capture is
// valid only if the child was painted this frame or its cached layer is
// still clean; a dirty, unpainted child means the deepest-first flush
// order was violated and yields a paint error.
//
// If the parent positioned the child away from its own origin, the
// child's (origin-relative) layer is wrapped in a container carrying the
// offset. The wrapped layer itself is untouched, so a pure move repaints
// only the parent.
func (p *paintPass) captureChildLayer(parent, child ElementID) (graphics.Layer, error) {
	el := p.tree.Get(child)
	if el == nil {
		panic(fmt.Sprintf("render: capture of stale child handle %s", child))
	}
	if el.needsPaint && el.paintedFrame != p.frame {
		return nil, &errors.PaintError{
			Element: uint64(parent),
			Child:   uint64(child),
			Detail:  "child layer captured before the child painted this frame",
		}
	}
	layer := el.layer
	if layer == nil {
		// The child's paint legitimately produced nothing (for example a
		// fully transparent subtree). Nothing to composite.
		return nil, nil
	}
	if el.offset == (graphics.Offset{}) {
		return layer, nil
	}
	positioned := graphics.NewContainerLayer(el.offset)
	positioned.Append(layer)
	return positioned, nil
}

// PaintElement paints the element through its arity-typed context and
// stores the resulting layer on the element. The returned layer is
// origin-relative and may be nil when the element draws nothing.
//
// frame is the current frame number; it stamps the element so parents
// painted later in the same flush can validate their captures.
func PaintElement(tree *Tree, id ElementID, frame uint64) (graphics.Layer, error) {
	pass := &paintPass{tree: tree, frame: frame}
	return pass.paintElement(id)
}

func (p *paintPass) paintElement(id ElementID) (graphics.Layer, error) {
	el := p.tree.Get(id)
	if el == nil {
		panic(fmt.Sprintf("render: paint of stale element handle %s", id))
	}

	children := p.tree.Children(id)
	variant := el.Variant()
	if !variant.Arity().ValidChildCount(len(children)) {
		// Layout already validated arity; a mismatch here means the tree
		// mutated between phases.
		panic(fmt.Sprintf("render: %s arity %s with %d children at paint time",
			id, variant.Arity(), len(children)))
	}

	base := PaintContext{pass: p, id: id, size: el.size, offset: el.offset}

	var layer graphics.Layer
	var err error
	switch variant.Arity() {
	case ArityLeaf:
		layer, err = variant.Leaf().Paint(&LeafPaintContext{PaintContext: base})
	case AritySingle:
		layer, err = variant.Single().Paint(&SingleChildPaintContext{
			PaintContext: base,
			child:        children[0],
		})
	case ArityMulti:
		layer, err = variant.Multi().Paint(&MultiChildPaintContext{
			PaintContext: base,
			children:     children,
		})
	}
	if err != nil {
		return nil, err
	}

	el.layer = layer
	el.paintedFrame = p.frame
	el.needsPaint = false
	return layer, nil
}

// MarkPaintDirty marks the element paint-dirty and propagates the mark to
// the root: every ancestor recomposites a stale descendant's layer into
// its own output.
func MarkPaintDirty(tree *Tree, set *DirtySet, id ElementID) {
	el := tree.Get(id)
	if el == nil || el.lifecycle == LifecycleDefunct {
		return
	}
	if el.needsPaint && set.Contains(id) {
		return
	}
	el.needsPaint = true
	set.Add(id, tree.Depth(id))
	if parent := el.parent; !parent.IsNil() {
		MarkPaintDirty(tree, set, parent)
	}
}

package render

import (
	"math/rand"
	"testing"

	"github.com/go-fern/fern/pkg/errors"
	"github.com/go-fern/fern/pkg/graphics"
)

type recordingHandler struct {
	layoutErrs []*errors.LayoutError
}

func (h *recordingHandler) HandleBuildError(*errors.BuildError) {}

func (h *recordingHandler) HandleLayoutError(err *errors.LayoutError) {
	h.layoutErrs = append(h.layoutErrs, err)
}

func (h *recordingHandler) HandlePaintError(*errors.PaintError) {}
func (h *recordingHandler) HandlePanic(*errors.PanicError)     {}

func TestLayoutLeaf(t *testing.T) {
	tree := NewTree()
	box := &boxBody{size: graphics.Size{Width: 20, Height: 10}}
	root := tree.Insert(NilElement, nodeConfig{}, LeafVariant(box))
	cache := NewLayoutCache()

	size, laidOut, err := LayoutElement(tree, cache, root, graphics.Loose(graphics.Size{Width: 100, Height: 100}), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size.Width != 20 || size.Height != 10 {
		t.Errorf("expected 20x10, got %+v", size)
	}
	if len(laidOut) != 1 || laidOut[0] != root {
		t.Errorf("expected laid-out list [%s], got %v", root, laidOut)
	}
	el := tree.Get(root)
	if el.NeedsLayout() {
		t.Error("expected layout mark cleared")
	}
	if el.Size() != size {
		t.Errorf("expected stored size %+v, got %+v", size, el.Size())
	}
}

func TestLayoutSatisfiesConstraints(t *testing.T) {
	tree := NewTree()
	wrap := &wrapBody{childOffset: graphics.Offset{X: 5, Y: 5}}
	root := tree.Insert(NilElement, nodeConfig{}, SingleVariant(wrap))
	tree.Insert(root, nodeConfig{}, LeafVariant(&boxBody{size: graphics.Size{Width: 30, Height: 30}}))
	cache := NewLayoutCache()

	constraints := graphics.Tight(graphics.Size{Width: 50, Height: 50})
	size, _, err := LayoutElement(tree, cache, root, constraints, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !constraints.IsSatisfiedBy(size) {
		t.Errorf("expected %+v to satisfy %v", size, constraints)
	}
}

func TestLayoutRandomTreesSatisfyConstraints(t *testing.T) {
	// Lenient mode: random leaves overflow on purpose and must be clamped
	// back into range.
	errors.SetHandler(&recordingHandler{})
	defer errors.SetHandler(nil)

	rng := rand.New(rand.NewSource(7))

	// grow attaches a random subtree of mixed arities under parent.
	var grow func(tree *Tree, parent ElementID, depth int)
	grow = func(tree *Tree, parent ElementID, depth int) {
		size := graphics.Size{
			Width:  float64(1 + rng.Intn(120)),
			Height: float64(1 + rng.Intn(120)),
		}
		if depth == 0 {
			tree.Insert(parent, nodeConfig{}, LeafVariant(&boxBody{size: size}))
			return
		}
		switch rng.Intn(3) {
		case 0:
			tree.Insert(parent, nodeConfig{}, LeafVariant(&boxBody{size: size}))
		case 1:
			id := tree.Insert(parent, nodeConfig{}, SingleVariant(&wrapBody{
				childOffset: graphics.Offset{X: float64(rng.Intn(10)), Y: float64(rng.Intn(10))},
			}))
			grow(tree, id, depth-1)
		default:
			id := tree.Insert(parent, nodeConfig{}, MultiVariant(&rowBody{}))
			for n := 1 + rng.Intn(3); n > 0; n-- {
				grow(tree, id, depth-1)
			}
		}
	}

	for trial := 0; trial < 50; trial++ {
		tree := NewTree()
		root := tree.Insert(NilElement, nodeConfig{}, SingleVariant(&wrapBody{}))
		grow(tree, root, 3)

		min := graphics.Size{
			Width:  float64(rng.Intn(40)),
			Height: float64(rng.Intn(40)),
		}
		constraints := graphics.Constraints{
			MinWidth:  min.Width,
			MaxWidth:  min.Width + float64(rng.Intn(100)),
			MinHeight: min.Height,
			MaxHeight: min.Height + float64(rng.Intn(100)),
		}
		size, _, err := LayoutElement(tree, NewLayoutCache(), root, constraints, false)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", trial, err)
		}
		if !constraints.IsSatisfiedBy(size) {
			t.Fatalf("trial %d: size %+v violates %v", trial, size, constraints)
		}
	}
}

func TestLayoutChildPositioning(t *testing.T) {
	tree := NewTree()
	wrap := &wrapBody{childOffset: graphics.Offset{X: 8, Y: 4}}
	root := tree.Insert(NilElement, nodeConfig{}, SingleVariant(wrap))
	child := tree.Insert(root, nodeConfig{}, LeafVariant(&boxBody{size: graphics.Size{Width: 10, Height: 10}}))
	cache := NewLayoutCache()

	_, _, err := LayoutElement(tree, cache, root, graphics.Loose(graphics.Size{Width: 100, Height: 100}), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tree.Get(child).Offset(); got.X != 8 || got.Y != 4 {
		t.Errorf("expected child offset (8, 4), got %+v", got)
	}
}

func TestLayoutCacheAvoidsRecomputation(t *testing.T) {
	tree := NewTree()
	wrap := &wrapBody{}
	box := &boxBody{size: graphics.Size{Width: 10, Height: 10}}
	root := tree.Insert(NilElement, nodeConfig{}, SingleVariant(wrap))
	tree.Insert(root, nodeConfig{}, LeafVariant(box))
	cache := NewLayoutCache()
	set := NewDirtySet(ShallowestFirst)

	constraints := graphics.Loose(graphics.Size{Width: 100, Height: 100})
	if _, _, err := LayoutElement(tree, cache, root, constraints, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box.layouts != 1 {
		t.Fatalf("expected 1 child layout, got %d", box.layouts)
	}

	// Relaying out only the parent must serve the clean child from cache.
	MarkLayoutDirty(tree, cache, set, root)
	if _, _, err := LayoutElement(tree, cache, root, constraints, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wrap.layouts != 2 {
		t.Errorf("expected parent to re-lay out, got %d invocations", wrap.layouts)
	}
	if box.layouts != 1 {
		t.Errorf("expected child layout served from cache, got %d invocations", box.layouts)
	}
}

func TestLayoutDirtyChildBypassesCache(t *testing.T) {
	tree := NewTree()
	wrap := &wrapBody{}
	box := &boxBody{size: graphics.Size{Width: 10, Height: 10}}
	root := tree.Insert(NilElement, nodeConfig{}, SingleVariant(wrap))
	child := tree.Insert(root, nodeConfig{}, LeafVariant(box))
	cache := NewLayoutCache()
	set := NewDirtySet(ShallowestFirst)

	constraints := graphics.Loose(graphics.Size{Width: 100, Height: 100})
	if _, _, err := LayoutElement(tree, cache, root, constraints, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	MarkLayoutDirty(tree, cache, set, child)
	if _, _, err := LayoutElement(tree, cache, root, constraints, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if box.layouts != 2 {
		t.Errorf("expected dirty child to re-lay out, got %d invocations", box.layouts)
	}
}

func TestLayoutCleanSubtreeSkipped(t *testing.T) {
	tree := NewTree()
	box := &boxBody{size: graphics.Size{Width: 10, Height: 10}}
	root := tree.Insert(NilElement, nodeConfig{}, LeafVariant(box))
	cache := NewLayoutCache()

	constraints := graphics.Loose(graphics.Size{Width: 100, Height: 100})
	LayoutElement(tree, cache, root, constraints, true)
	_, laidOut, _ := LayoutElement(tree, cache, root, constraints, true)
	if box.layouts != 1 {
		t.Errorf("expected clean element skipped, got %d invocations", box.layouts)
	}
	if len(laidOut) != 0 {
		t.Errorf("expected no elements laid out on clean pass, got %v", laidOut)
	}
}

func TestLayoutConstraintViolationStrict(t *testing.T) {
	tree := NewTree()
	root := tree.Insert(NilElement, nodeConfig{}, LeafVariant(&oversizedBody{size: graphics.Size{Width: 200, Height: 200}}))
	cache := NewLayoutCache()

	_, _, err := LayoutElement(tree, cache, root, graphics.Tight(graphics.Size{Width: 50, Height: 50}), true)
	layoutErr, ok := err.(*errors.LayoutError)
	if !ok {
		t.Fatalf("expected *errors.LayoutError, got %T", err)
	}
	if layoutErr.Kind != errors.ConstraintViolation {
		t.Errorf("expected constraint violation, got %s", layoutErr.Kind)
	}
	if layoutErr.Fatal() {
		t.Error("expected constraint violation to be recoverable")
	}
}

func TestLayoutConstraintViolationLenient(t *testing.T) {
	handler := &recordingHandler{}
	errors.SetHandler(handler)
	defer errors.SetHandler(nil)

	tree := NewTree()
	root := tree.Insert(NilElement, nodeConfig{}, LeafVariant(&oversizedBody{size: graphics.Size{Width: 200, Height: 200}}))
	cache := NewLayoutCache()

	size, _, err := LayoutElement(tree, cache, root, graphics.Tight(graphics.Size{Width: 50, Height: 50}), false)
	if err != nil {
		t.Fatalf("expected lenient mode to recover, got %v", err)
	}
	if size.Width != 50 || size.Height != 50 {
		t.Errorf("expected clamp to 50x50, got %+v", size)
	}
	if len(handler.layoutErrs) != 1 {
		t.Fatalf("expected 1 reported violation, got %d", len(handler.layoutErrs))
	}
	if handler.layoutErrs[0].Kind != errors.ConstraintViolation {
		t.Errorf("expected reported constraint violation, got %s", handler.layoutErrs[0].Kind)
	}
}

func TestLayoutArityMismatchFatal(t *testing.T) {
	tree := NewTree()
	root := tree.Insert(NilElement, nodeConfig{}, MultiVariant(&rowBody{}))
	a := tree.Insert(root, nodeConfig{}, SingleVariant(&wrapBody{}))
	tree.Insert(a, nodeConfig{}, LeafVariant(&boxBody{size: graphics.Size{Width: 5, Height: 5}}))
	cache := NewLayoutCache()

	// Detach a's only child behind the arity contract's back.
	child := tree.Children(a)[0]
	tree.Deactivate(child)

	_, _, err := LayoutElement(tree, cache, root, graphics.Loose(graphics.Size{Width: 100, Height: 100}), false)
	layoutErr, ok := err.(*errors.LayoutError)
	if !ok {
		t.Fatalf("expected *errors.LayoutError, got %T", err)
	}
	if layoutErr.Kind != errors.ArityMismatch {
		t.Errorf("expected arity mismatch, got %s", layoutErr.Kind)
	}
	if !layoutErr.Fatal() {
		t.Error("expected arity mismatch to be fatal even in lenient mode")
	}
}

func TestMarkLayoutDirtyPropagatesToAncestors(t *testing.T) {
	tree, root, a, _, leaf := buildTestTree(t)
	cache := NewLayoutCache()
	set := NewDirtySet(ShallowestFirst)

	// Lay out so every element carries loose constraints.
	if _, _, err := LayoutElement(tree, cache, root, graphics.Loose(graphics.Size{Width: 100, Height: 100}), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	MarkLayoutDirty(tree, cache, set, leaf)
	for _, id := range []ElementID{leaf, a, root} {
		if !set.Contains(id) {
			t.Errorf("expected %s in the dirty set", id)
		}
	}
}

func TestMarkLayoutDirtyStopsAtTightBoundary(t *testing.T) {
	tree := NewTree()
	wrap := &wrapBody{}
	root := tree.Insert(NilElement, nodeConfig{}, SingleVariant(wrap))
	child := tree.Insert(root, nodeConfig{}, LeafVariant(&boxBody{size: graphics.Size{Width: 50, Height: 50}}))
	cache := NewLayoutCache()
	set := NewDirtySet(ShallowestFirst)

	// Tight root constraints make the child's constraints loose but the
	// root itself a boundary for anything above it. To exercise the
	// boundary, lay the child out tight directly.
	if _, _, err := LayoutElement(tree, cache, root, graphics.Tight(graphics.Size{Width: 50, Height: 50}), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := LayoutElement(tree, cache, child, graphics.Tight(graphics.Size{Width: 50, Height: 50}), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	MarkLayoutDirty(tree, cache, set, child)
	if !set.Contains(child) {
		t.Error("expected the marked element in the dirty set")
	}
	if set.Contains(root) {
		t.Error("expected propagation to stop at the tightly constrained element")
	}
}

func TestMarkLayoutDirtyInvalidatesCache(t *testing.T) {
	tree := NewTree()
	wrap := &wrapBody{}
	root := tree.Insert(NilElement, nodeConfig{}, SingleVariant(wrap))
	child := tree.Insert(root, nodeConfig{}, LeafVariant(&boxBody{size: graphics.Size{Width: 10, Height: 10}}))
	cache := NewLayoutCache()
	set := NewDirtySet(ShallowestFirst)

	constraints := graphics.Loose(graphics.Size{Width: 100, Height: 100})
	LayoutElement(tree, cache, root, constraints, true)
	if cache.Len() == 0 {
		t.Fatal("expected cache entries after layout")
	}

	MarkLayoutDirty(tree, cache, set, child)
	key := LayoutCacheKey{ID: child, Constraints: constraints.Loosen(), SiblingCount: NoSiblingCount}
	if _, ok := cache.Get(key); ok {
		t.Error("expected the dirty element's cache entries invalidated")
	}
}

func TestLayoutSiblingCountInCacheKey(t *testing.T) {
	tree := NewTree()
	row := &rowBody{}
	box := &boxBody{size: graphics.Size{Width: 10, Height: 10}}
	root := tree.Insert(NilElement, nodeConfig{}, MultiVariant(row))
	child := tree.Insert(root, nodeConfig{}, LeafVariant(box))
	cache := NewLayoutCache()

	constraints := graphics.Loose(graphics.Size{Width: 100, Height: 100})
	if _, _, err := LayoutElement(tree, cache, root, constraints, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key := LayoutCacheKey{ID: child, Constraints: constraints.Loosen(), SiblingCount: 1}
	if _, ok := cache.Get(key); !ok {
		t.Error("expected cache entry keyed on sibling count 1")
	}
}

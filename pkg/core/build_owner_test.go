package core

import (
	"testing"

	"github.com/go-fern/fern/pkg/errors"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// testLeafBody is a minimal leaf render object for build tests.
type testLeafBody struct {
	size graphics.Size
}

func (b *testLeafBody) Layout(cx *render.LeafLayoutContext) (graphics.Size, error) {
	return cx.Constraints().Constrain(b.size), nil
}

func (b *testLeafBody) Paint(cx *render.LeafPaintContext) (graphics.Layer, error) {
	return cx.Finish(), nil
}

type testColumnBody struct{}

func (testColumnBody) Layout(cx *render.MultiChildLayoutContext) (graphics.Size, error) {
	var y, width float64
	for _, child := range cx.Children() {
		size, err := cx.LayoutChild(child, cx.Constraints().Loosen())
		if err != nil {
			return graphics.Size{}, err
		}
		cx.PositionChild(child, graphics.Offset{Y: y})
		y += size.Height
		if size.Width > width {
			width = size.Width
		}
	}
	return cx.Constraints().Constrain(graphics.Size{Width: width, Height: y}), nil
}

func (testColumnBody) Paint(cx *render.MultiChildPaintContext) (graphics.Layer, error) {
	out := graphics.NewContainerLayer(graphics.Offset{})
	for _, child := range cx.Children() {
		layer, err := cx.CaptureChildLayer(child)
		if err != nil {
			return nil, err
		}
		out.Append(layer)
	}
	return out, nil
}

// boxWidget is a leaf render widget.
type boxWidget struct {
	key  any
	size graphics.Size
}

func (w boxWidget) Key() any { return w.key }

func (w boxWidget) CreateRenderObject() render.RenderVariant {
	return render.LeafVariant(&testLeafBody{size: w.size})
}

func (w boxWidget) UpdateRenderObject(v render.RenderVariant) {
	v.Leaf().(*testLeafBody).size = w.size
}

// columnWidget is a multi-child render widget.
type columnWidget struct {
	key      any
	children []Widget
}

func (w columnWidget) Key() any { return w.key }

func (w columnWidget) CreateRenderObject() render.RenderVariant {
	return render.MultiVariant(testColumnBody{})
}

func (w columnWidget) UpdateRenderObject(render.RenderVariant) {}

func (w columnWidget) Children() []Widget { return w.children }

// hostWidget is a mutable stateless root: tests swap the child between
// flushes and reschedule the root.
type hostWidget struct {
	child Widget
}

func (h *hostWidget) Key() any { return nil }

func (h *hostWidget) Build(*BuildContext) Widget { return h.child }

// themeWidget provides a string value under the "theme" key.
type themeWidget struct {
	value string
	child Widget
}

func (w themeWidget) Key() any { return nil }

func (w themeWidget) ProviderKey() render.ProviderKey { return "theme" }

func (w themeWidget) ProviderValue() any { return w.value }

func (w themeWidget) ShouldNotify(old any) bool { return old != w.value }

func (w themeWidget) Child() Widget { return w.child }

// themedBox records the theme value it saw on each build.
type themedBox struct {
	observed *[]string
}

func (w themedBox) Key() any { return nil }

func (w themedBox) Build(cx *BuildContext) Widget {
	if value, ok := cx.DependOn("theme"); ok {
		*w.observed = append(*w.observed, value.(string))
	}
	return boxWidget{size: graphics.Size{Width: 10, Height: 10}}
}

func newOwner(t *testing.T) (*render.Tree, *BuildOwner) {
	t.Helper()
	tree := render.NewTree()
	return tree, NewBuildOwner(tree)
}

func flush(t *testing.T, owner *BuildOwner) (built, iterations int) {
	t.Helper()
	built, iterations, err := owner.FlushBuild()
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	return built, iterations
}

func TestMountBuildsWholeTree(t *testing.T) {
	tree, owner := newOwner(t)
	host := &hostWidget{child: columnWidget{children: []Widget{
		boxWidget{size: graphics.Size{Width: 10, Height: 10}},
		boxWidget{size: graphics.Size{Width: 20, Height: 20}},
	}}}

	root := owner.Mount(host)
	built, iterations := flush(t, owner)

	// host -> column -> two boxes, all built in one pass.
	if built != 4 {
		t.Errorf("expected 4 elements built, got %d", built)
	}
	if iterations != 1 {
		t.Errorf("expected 1 pass, got %d", iterations)
	}
	if tree.Len() != 4 {
		t.Errorf("expected 4 live elements, got %d", tree.Len())
	}
	column := tree.Children(root)[0]
	if got := len(tree.Children(column)); got != 2 {
		t.Errorf("expected 2 column children, got %d", got)
	}
}

func TestRebuildUpdatesInPlace(t *testing.T) {
	tree, owner := newOwner(t)
	host := &hostWidget{child: boxWidget{size: graphics.Size{Width: 10, Height: 10}}}
	root := owner.Mount(host)
	flush(t, owner)
	boxID := tree.Children(root)[0]

	host.child = boxWidget{size: graphics.Size{Width: 30, Height: 30}}
	owner.ScheduleBuild(root)
	flush(t, owner)

	if got := tree.Children(root)[0]; got != boxID {
		t.Errorf("expected element reuse, got %s then %s", boxID, got)
	}
	body := tree.Get(boxID).Variant().Leaf().(*testLeafBody)
	if body.size.Width != 30 {
		t.Errorf("expected render object updated in place, got width %f", body.size.Width)
	}
}

func TestRebuildSkipsUnchangedSubtree(t *testing.T) {
	tree, owner := newOwner(t)
	child := boxWidget{size: graphics.Size{Width: 10, Height: 10}}
	host := &hostWidget{child: child}
	root := owner.Mount(host)
	flush(t, owner)
	boxID := tree.Children(root)[0]

	owner.ScheduleBuild(root)
	built, _ := flush(t, owner)

	// Only the host rebuilt; the identical child configuration short-
	// circuits.
	if built != 1 {
		t.Errorf("expected 1 element built, got %d", built)
	}
	if got := tree.Children(root)[0]; got != boxID {
		t.Errorf("expected child untouched, got %s then %s", boxID, got)
	}
}

func TestReconcileByKey(t *testing.T) {
	tree, owner := newOwner(t)
	a := boxWidget{key: "a", size: graphics.Size{Width: 1, Height: 1}}
	b := boxWidget{key: "b", size: graphics.Size{Width: 2, Height: 2}}
	host := &hostWidget{child: columnWidget{children: []Widget{a, b}}}
	root := owner.Mount(host)
	flush(t, owner)

	column := tree.Children(root)[0]
	before := tree.Children(column)

	// Swap the keyed children; elements must follow their keys.
	host.child = columnWidget{children: []Widget{b, a}}
	owner.ScheduleBuild(root)
	flush(t, owner)

	after := tree.Children(column)
	if len(after) != 2 {
		t.Fatalf("expected 2 children, got %d", len(after))
	}
	if after[0] != before[1] || after[1] != before[0] {
		t.Errorf("expected keyed reorder %v -> reversed, got %v", before, after)
	}
}

func TestReconcileReplacesOnTypeChange(t *testing.T) {
	tree, owner := newOwner(t)
	host := &hostWidget{child: columnWidget{children: []Widget{
		boxWidget{size: graphics.Size{Width: 10, Height: 10}},
	}}}
	root := owner.Mount(host)
	flush(t, owner)
	column := tree.Children(root)[0]
	oldChild := tree.Children(column)[0]

	host.child = columnWidget{children: []Widget{
		columnWidget{children: nil},
	}}
	owner.ScheduleBuild(root)
	flush(t, owner)

	newChild := tree.Children(column)[0]
	if newChild == oldChild {
		t.Error("expected a fresh element for the changed widget type")
	}
	if el := tree.Get(oldChild); el != nil && el.Lifecycle() == render.LifecycleActive {
		t.Error("expected the replaced element to leave the active tree")
	}
}

func TestReconcileDropsRemovedChildren(t *testing.T) {
	tree, owner := newOwner(t)
	host := &hostWidget{child: columnWidget{children: []Widget{
		boxWidget{key: "a", size: graphics.Size{Width: 1, Height: 1}},
		boxWidget{key: "b", size: graphics.Size{Width: 2, Height: 2}},
	}}}
	root := owner.Mount(host)
	flush(t, owner)
	column := tree.Children(root)[0]

	host.child = columnWidget{children: []Widget{
		boxWidget{key: "a", size: graphics.Size{Width: 1, Height: 1}},
	}}
	owner.ScheduleBuild(root)
	flush(t, owner)

	if got := len(tree.Children(column)); got != 1 {
		t.Errorf("expected 1 child after removal, got %d", got)
	}
	removed := tree.SweepDetached()
	if len(removed) != 1 {
		t.Errorf("expected sweep to defunct 1 element, got %d", len(removed))
	}
}

func TestBuildConvergenceCap(t *testing.T) {
	_, owner := newOwner(t)
	owner.SetMaxIterations(5)
	owner.Mount(&restlessWidget{})

	_, iterations, err := owner.FlushBuild()
	buildErr, ok := err.(*errors.BuildError)
	if !ok {
		t.Fatalf("expected *errors.BuildError, got %T", err)
	}
	if !buildErr.IsIterationLimit() {
		t.Error("expected an iteration limit error")
	}
	if iterations != 6 {
		t.Errorf("expected cap exceeded on pass 6, got %d", iterations)
	}
}

// restlessWidget reschedules itself on every build and never settles.
type restlessWidget struct{}

func (*restlessWidget) Key() any { return nil }

func (*restlessWidget) Build(cx *BuildContext) Widget {
	cx.ScheduleRebuild()
	return boxWidget{size: graphics.Size{Width: 1, Height: 1}}
}

func TestBuildPanicContained(t *testing.T) {
	handler := &captureHandler{}
	errors.SetHandler(handler)
	defer errors.SetHandler(nil)

	_, owner := newOwner(t)
	owner.Mount(&panickyWidget{})

	_, _, err := owner.FlushBuild()
	if err != nil {
		t.Fatalf("expected panic to be contained, got %v", err)
	}
	if len(handler.buildErrs) != 1 {
		t.Fatalf("expected 1 reported build error, got %d", len(handler.buildErrs))
	}
	if handler.buildErrs[0].Recovered == nil {
		t.Error("expected the recovered panic value on the error")
	}
	if handler.buildErrs[0].StackTrace == "" {
		t.Error("expected a captured stack trace")
	}
}

type panickyWidget struct{}

func (*panickyWidget) Key() any { return nil }

func (*panickyWidget) Build(*BuildContext) Widget {
	panic("widget exploded")
}

type captureHandler struct {
	buildErrs []*errors.BuildError
}

func (h *captureHandler) HandleBuildError(err *errors.BuildError) {
	h.buildErrs = append(h.buildErrs, err)
}

func (h *captureHandler) HandleLayoutError(*errors.LayoutError) {}
func (h *captureHandler) HandlePaintError(*errors.PaintError)   {}
func (h *captureHandler) HandlePanic(*errors.PanicError)        {}

// ancestryBox records the widgets above it during its own build.
type ancestryBox struct {
	seen *[]Widget
}

func (w ancestryBox) Key() any { return nil }

func (w ancestryBox) Build(cx *BuildContext) Widget {
	cx.VisitAncestors(func(_ render.ElementID, ancestor Widget) bool {
		*w.seen = append(*w.seen, ancestor)
		return true
	})
	return boxWidget{size: graphics.Size{Width: 1, Height: 1}}
}

func TestVisitAncestorsWalksToRoot(t *testing.T) {
	_, owner := newOwner(t)
	var seen []Widget
	host := &hostWidget{child: columnWidget{children: []Widget{ancestryBox{seen: &seen}}}}
	owner.Mount(host)
	flush(t, owner)

	if len(seen) != 2 {
		t.Fatalf("expected 2 ancestors, got %d: %v", len(seen), seen)
	}
	if _, ok := seen[0].(columnWidget); !ok {
		t.Errorf("expected the nearest ancestor first, got %T", seen[0])
	}
	if seen[1] != Widget(host) {
		t.Errorf("expected the root widget last, got %T", seen[1])
	}
}

func TestProviderNotifiesDependents(t *testing.T) {
	_, owner := newOwner(t)
	var observed []string
	host := &hostWidget{child: themeWidget{value: "dark", child: themedBox{observed: &observed}}}
	root := owner.Mount(host)
	flush(t, owner)

	if len(observed) != 1 || observed[0] != "dark" {
		t.Fatalf("expected initial observation [dark], got %v", observed)
	}

	// The dependent's own configuration is unchanged, so only the
	// provider notification can reach it.
	host.child = themeWidget{value: "light", child: themedBox{observed: &observed}}
	owner.ScheduleBuild(root)
	_, iterations := flush(t, owner)

	if len(observed) != 2 || observed[1] != "light" {
		t.Errorf("expected notified rebuild to observe light, got %v", observed)
	}
	if iterations != 2 {
		t.Errorf("expected the notification to land in a second pass, got %d", iterations)
	}
}

func TestProviderSilentWhenValueUnchanged(t *testing.T) {
	_, owner := newOwner(t)
	var observed []string
	host := &hostWidget{child: themeWidget{value: "dark", child: themedBox{observed: &observed}}}
	root := owner.Mount(host)
	flush(t, owner)

	host.child = themeWidget{value: "dark", child: themedBox{observed: &observed}}
	owner.ScheduleBuild(root)
	flush(t, owner)

	if len(observed) != 1 {
		t.Errorf("expected no rebuild for an unchanged value, got %v", observed)
	}
}

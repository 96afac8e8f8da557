// Package core owns the widget configuration surface and the build phase:
// inflating widget descriptions into elements, reconciling children across
// rebuilds, and draining the build dirty set in depth-ordered passes.
package core

import (
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// Widget is an immutable description of a piece of the tree. Widgets are
// cheap values; the persistent state lives on elements.
type Widget interface {
	// Key returns the explicit reconciliation key, or nil to match by
	// position and concrete type.
	Key() any
}

// StatelessWidget composes other widgets. Build runs during the build
// phase and its result becomes the element's only child.
type StatelessWidget interface {
	Widget
	Build(cx *BuildContext) Widget
}

// RenderWidget configures a render object directly. CreateRenderObject
// runs once at inflation; UpdateRenderObject runs on every subsequent
// rebuild with the element's existing variant, so the render object is
// mutated in place rather than replaced.
type RenderWidget interface {
	Widget
	CreateRenderObject() render.RenderVariant
	UpdateRenderObject(variant render.RenderVariant)
}

// SingleChildRenderWidget is a render widget with one declared child.
type SingleChildRenderWidget interface {
	RenderWidget
	Child() Widget
}

// MultiChildRenderWidget is a render widget with a declared child list.
type MultiChildRenderWidget interface {
	RenderWidget
	Children() []Widget
}

// ProviderWidget exposes a value to every descendant that asks for its
// key. When a rebuild changes the value, ShouldNotify decides whether
// registered dependents are scheduled for rebuild.
type ProviderWidget interface {
	Widget
	ProviderKey() render.ProviderKey
	ProviderValue() any
	ShouldNotify(old any) bool
	Child() Widget
}

// proxyBody is the render object backing composite (stateless and
// provider) elements: it passes constraints through to its child and
// hands the child's layer up unchanged.
type proxyBody struct{}

func (proxyBody) Layout(cx *render.SingleChildLayoutContext) (graphics.Size, error) {
	size, err := cx.LayoutChild(cx.Child(), cx.Constraints())
	if err != nil {
		return graphics.Size{}, err
	}
	cx.PositionChild(cx.Child(), graphics.Offset{})
	return size, nil
}

func (proxyBody) Paint(cx *render.SingleChildPaintContext) (graphics.Layer, error) {
	return cx.CaptureChildLayer(cx.Child())
}

// variantFor returns the render variant a widget inflates with. Composite
// widgets get the transparent proxy.
func variantFor(w Widget) render.RenderVariant {
	if rw, ok := w.(RenderWidget); ok {
		return rw.CreateRenderObject()
	}
	return render.SingleVariant(proxyBody{})
}

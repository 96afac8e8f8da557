package objects

import (
	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// Opacity blends its child at the given alpha. Both extremes short
// circuit: fully opaque hands the child layer up untouched, fully
// transparent drops the subtree from the layer tree entirely.
type Opacity struct {
	WidgetKey   any
	Opacity     float64
	ChildWidget core.Widget
}

func (w Opacity) Key() any { return w.WidgetKey }

func (w Opacity) Child() core.Widget { return w.ChildWidget }

func (w Opacity) CreateRenderObject() render.RenderVariant {
	return render.SingleVariant(&opacityBody{opacity: w.Opacity})
}

func (w Opacity) UpdateRenderObject(v render.RenderVariant) {
	v.Single().(*opacityBody).opacity = w.Opacity
}

type opacityBody struct {
	opacity float64
}

func (b *opacityBody) Layout(cx *render.SingleChildLayoutContext) (graphics.Size, error) {
	size, err := cx.LayoutChild(cx.Child(), cx.Constraints())
	if err != nil {
		return graphics.Size{}, err
	}
	cx.PositionChild(cx.Child(), graphics.Offset{})
	return size, nil
}

func (b *opacityBody) Paint(cx *render.SingleChildPaintContext) (graphics.Layer, error) {
	if b.opacity <= 0 {
		return nil, nil
	}
	child, err := cx.CaptureChildLayer(cx.Child())
	if err != nil {
		return nil, err
	}
	if b.opacity >= 1 || child == nil {
		return child, nil
	}
	return graphics.NewOpacityLayer(child, b.opacity), nil
}

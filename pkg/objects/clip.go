package objects

import (
	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// ClipRect clips its child to its own bounds. ClipNone is a pass
// through: the child layer goes up unwrapped.
type ClipRect struct {
	WidgetKey   any
	Mode        graphics.ClipMode
	ChildWidget core.Widget
}

func (w ClipRect) Key() any { return w.WidgetKey }

func (w ClipRect) Child() core.Widget { return w.ChildWidget }

func (w ClipRect) CreateRenderObject() render.RenderVariant {
	return render.SingleVariant(&clipRectBody{mode: w.Mode})
}

func (w ClipRect) UpdateRenderObject(v render.RenderVariant) {
	v.Single().(*clipRectBody).mode = w.Mode
}

type clipRectBody struct {
	mode graphics.ClipMode
}

func (b *clipRectBody) Layout(cx *render.SingleChildLayoutContext) (graphics.Size, error) {
	size, err := cx.LayoutChild(cx.Child(), cx.Constraints())
	if err != nil {
		return graphics.Size{}, err
	}
	cx.PositionChild(cx.Child(), graphics.Offset{})
	return size, nil
}

func (b *clipRectBody) Paint(cx *render.SingleChildPaintContext) (graphics.Layer, error) {
	child, err := cx.CaptureChildLayer(cx.Child())
	if err != nil {
		return nil, err
	}
	if b.mode == graphics.ClipNone || child == nil {
		return child, nil
	}
	return graphics.NewClipRectLayer(child, graphics.RectFromSize(cx.Size()), b.mode), nil
}

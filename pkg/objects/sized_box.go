package objects

import (
	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// SizedBox forces its child to a fixed size, as far as the incoming
// constraints allow. Because the child is laid out under tight
// constraints, a SizedBox is a relayout boundary: dirt inside its
// subtree never propagates above it.
type SizedBox struct {
	WidgetKey   any
	Size        graphics.Size
	ChildWidget core.Widget
}

func (w SizedBox) Key() any { return w.WidgetKey }

func (w SizedBox) Child() core.Widget { return w.ChildWidget }

func (w SizedBox) CreateRenderObject() render.RenderVariant {
	return render.SingleVariant(&sizedBoxBody{size: w.Size})
}

func (w SizedBox) UpdateRenderObject(v render.RenderVariant) {
	v.Single().(*sizedBoxBody).size = w.Size
}

type sizedBoxBody struct {
	size graphics.Size
}

func (b *sizedBoxBody) Layout(cx *render.SingleChildLayoutContext) (graphics.Size, error) {
	size := cx.Constraints().Constrain(b.size)
	if _, err := cx.LayoutChild(cx.Child(), graphics.Tight(size)); err != nil {
		return graphics.Size{}, err
	}
	cx.PositionChild(cx.Child(), graphics.Offset{})
	return size, nil
}

func (b *sizedBoxBody) Paint(cx *render.SingleChildPaintContext) (graphics.Layer, error) {
	return cx.CaptureChildLayer(cx.Child())
}

package objects

import (
	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// AspectRatio sizes itself to the largest rectangle with the given
// width/height ratio that fits the constraints, then lays its child out
// tightly at that size.
type AspectRatio struct {
	WidgetKey   any
	Ratio       float64
	ChildWidget core.Widget
}

func (w AspectRatio) Key() any { return w.WidgetKey }

func (w AspectRatio) Child() core.Widget { return w.ChildWidget }

func (w AspectRatio) CreateRenderObject() render.RenderVariant {
	return render.SingleVariant(&aspectRatioBody{ratio: w.Ratio})
}

func (w AspectRatio) UpdateRenderObject(v render.RenderVariant) {
	v.Single().(*aspectRatioBody).ratio = w.Ratio
}

type aspectRatioBody struct {
	ratio float64
}

func (b *aspectRatioBody) Layout(cx *render.SingleChildLayoutContext) (graphics.Size, error) {
	c := cx.Constraints()
	width := c.MaxWidth
	if !c.HasBoundedWidth() {
		width = c.MinWidth
	}
	height := width / b.ratio
	if height > c.MaxHeight {
		height = c.MaxHeight
		width = height * b.ratio
	}
	size := c.Constrain(graphics.Size{Width: width, Height: height})
	if _, err := cx.LayoutChild(cx.Child(), graphics.Tight(size)); err != nil {
		return graphics.Size{}, err
	}
	cx.PositionChild(cx.Child(), graphics.Offset{})
	return size, nil
}

func (b *aspectRatioBody) Paint(cx *render.SingleChildPaintContext) (graphics.Layer, error) {
	return cx.CaptureChildLayer(cx.Child())
}

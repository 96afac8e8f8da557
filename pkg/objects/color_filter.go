package objects

import (
	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// ColorFilter runs its child's pixels through a color matrix. An
// identity matrix is a pass through.
type ColorFilter struct {
	WidgetKey   any
	Matrix      graphics.ColorMatrix
	ChildWidget core.Widget
}

func (w ColorFilter) Key() any { return w.WidgetKey }

func (w ColorFilter) Child() core.Widget { return w.ChildWidget }

func (w ColorFilter) CreateRenderObject() render.RenderVariant {
	return render.SingleVariant(&colorFilterBody{matrix: w.Matrix})
}

func (w ColorFilter) UpdateRenderObject(v render.RenderVariant) {
	v.Single().(*colorFilterBody).matrix = w.Matrix
}

type colorFilterBody struct {
	matrix graphics.ColorMatrix
}

func (b *colorFilterBody) Layout(cx *render.SingleChildLayoutContext) (graphics.Size, error) {
	size, err := cx.LayoutChild(cx.Child(), cx.Constraints())
	if err != nil {
		return graphics.Size{}, err
	}
	cx.PositionChild(cx.Child(), graphics.Offset{})
	return size, nil
}

func (b *colorFilterBody) Paint(cx *render.SingleChildPaintContext) (graphics.Layer, error) {
	child, err := cx.CaptureChildLayer(cx.Child())
	if err != nil {
		return nil, err
	}
	if b.matrix.IsIdentity() || child == nil {
		return child, nil
	}
	return graphics.NewColorFilterLayer(child, b.matrix), nil
}

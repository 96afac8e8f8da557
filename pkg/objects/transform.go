package objects

import (
	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// Transform applies an affine transform to its child's layer. An
// identity matrix is a pass through.
type Transform struct {
	WidgetKey   any
	Matrix      graphics.Matrix
	ChildWidget core.Widget
}

func (w Transform) Key() any { return w.WidgetKey }

func (w Transform) Child() core.Widget { return w.ChildWidget }

func (w Transform) CreateRenderObject() render.RenderVariant {
	return render.SingleVariant(&transformBody{matrix: w.Matrix})
}

func (w Transform) UpdateRenderObject(v render.RenderVariant) {
	v.Single().(*transformBody).matrix = w.Matrix
}

type transformBody struct {
	matrix graphics.Matrix
}

func (b *transformBody) Layout(cx *render.SingleChildLayoutContext) (graphics.Size, error) {
	size, err := cx.LayoutChild(cx.Child(), cx.Constraints())
	if err != nil {
		return graphics.Size{}, err
	}
	cx.PositionChild(cx.Child(), graphics.Offset{})
	return size, nil
}

func (b *transformBody) Paint(cx *render.SingleChildPaintContext) (graphics.Layer, error) {
	child, err := cx.CaptureChildLayer(cx.Child())
	if err != nil {
		return nil, err
	}
	if b.matrix.IsIdentity() || child == nil {
		return child, nil
	}
	return graphics.NewTransformLayer(child, b.matrix), nil
}

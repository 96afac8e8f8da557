package objects

import (
	"math"

	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// EdgeInsets describes spacing on each side of a box.
type EdgeInsets struct {
	Left, Top, Right, Bottom float64
}

// UniformInsets returns equal insets on all four sides.
func UniformInsets(value float64) EdgeInsets {
	return EdgeInsets{Left: value, Top: value, Right: value, Bottom: value}
}

// Horizontal returns the combined left and right insets.
func (e EdgeInsets) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns the combined top and bottom insets.
func (e EdgeInsets) Vertical() float64 { return e.Top + e.Bottom }

// deflate shrinks constraints by the insets, clamping at zero.
func (e EdgeInsets) deflate(c graphics.Constraints) graphics.Constraints {
	return graphics.Constraints{
		MinWidth:  math.Max(0, c.MinWidth-e.Horizontal()),
		MaxWidth:  math.Max(0, c.MaxWidth-e.Horizontal()),
		MinHeight: math.Max(0, c.MinHeight-e.Vertical()),
		MaxHeight: math.Max(0, c.MaxHeight-e.Vertical()),
	}
}

// Padding insets its child on all sides.
type Padding struct {
	WidgetKey   any
	Insets      EdgeInsets
	ChildWidget core.Widget
}

func (w Padding) Key() any { return w.WidgetKey }

func (w Padding) Child() core.Widget { return w.ChildWidget }

func (w Padding) CreateRenderObject() render.RenderVariant {
	return render.SingleVariant(&paddingBody{insets: w.Insets})
}

func (w Padding) UpdateRenderObject(v render.RenderVariant) {
	v.Single().(*paddingBody).insets = w.Insets
}

type paddingBody struct {
	insets EdgeInsets
}

func (b *paddingBody) Layout(cx *render.SingleChildLayoutContext) (graphics.Size, error) {
	childSize, err := cx.LayoutChild(cx.Child(), b.insets.deflate(cx.Constraints()))
	if err != nil {
		return graphics.Size{}, err
	}
	cx.PositionChild(cx.Child(), graphics.Offset{X: b.insets.Left, Y: b.insets.Top})
	return cx.Constraints().Constrain(graphics.Size{
		Width:  childSize.Width + b.insets.Horizontal(),
		Height: childSize.Height + b.insets.Vertical(),
	}), nil
}

func (b *paddingBody) Paint(cx *render.SingleChildPaintContext) (graphics.Layer, error) {
	return cx.CaptureChildLayer(cx.Child())
}

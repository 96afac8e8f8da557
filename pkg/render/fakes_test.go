package render

import "github.com/go-fern/fern/pkg/graphics"

// boxBody is a leaf that reports a fixed size and draws a filled rect.
// The invocation counters let tests assert which phases actually ran.
type boxBody struct {
	size    graphics.Size
	layouts int
	paints  int
}

func (b *boxBody) Layout(cx *LeafLayoutContext) (graphics.Size, error) {
	b.layouts++
	return b.size, nil
}

func (b *boxBody) Paint(cx *LeafPaintContext) (graphics.Layer, error) {
	b.paints++
	cx.Canvas().DrawRect(graphics.RectFromSize(cx.Size()), graphics.DefaultPaint())
	return cx.Finish(), nil
}

// wrapBody is a single-child body that passes loosened constraints down,
// positions the child at a fixed offset, and sizes itself to the child.
type wrapBody struct {
	childOffset graphics.Offset
	layouts     int
	paints      int
}

func (w *wrapBody) Layout(cx *SingleChildLayoutContext) (graphics.Size, error) {
	w.layouts++
	childSize, err := cx.LayoutChild(cx.Child(), cx.Constraints().Loosen())
	if err != nil {
		return graphics.Size{}, err
	}
	cx.PositionChild(cx.Child(), w.childOffset)
	return cx.Constraints().Constrain(graphics.Size{
		Width:  childSize.Width + w.childOffset.X,
		Height: childSize.Height + w.childOffset.Y,
	}), nil
}

func (w *wrapBody) Paint(cx *SingleChildPaintContext) (graphics.Layer, error) {
	w.paints++
	child, err := cx.CaptureChildLayer(cx.Child())
	if err != nil {
		return nil, err
	}
	out := graphics.NewContainerLayer(graphics.Offset{})
	out.Append(child)
	return out, nil
}

// rowBody is a multi-child body that lays children out left to right.
type rowBody struct {
	layouts int
	paints  int
}

func (r *rowBody) Layout(cx *MultiChildLayoutContext) (graphics.Size, error) {
	r.layouts++
	var x, height float64
	for _, child := range cx.Children() {
		size, err := cx.LayoutChild(child, cx.Constraints().Loosen())
		if err != nil {
			return graphics.Size{}, err
		}
		cx.PositionChild(child, graphics.Offset{X: x})
		x += size.Width
		if size.Height > height {
			height = size.Height
		}
	}
	return cx.Constraints().Constrain(graphics.Size{Width: x, Height: height}), nil
}

func (r *rowBody) Paint(cx *MultiChildPaintContext) (graphics.Layer, error) {
	r.paints++
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

// oversizedBody returns a size regardless of the constraints it was given.
type oversizedBody struct {
	size graphics.Size
}

func (o *oversizedBody) Layout(cx *LeafLayoutContext) (graphics.Size, error) {
	return o.size, nil
}

func (o *oversizedBody) Paint(cx *LeafPaintContext) (graphics.Layer, error) {
	return cx.Finish(), nil
}

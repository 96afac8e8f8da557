// Package objects provides the concrete render objects and their widget
// configurations: solid fills, spacing and sizing boxes, compositing
// effects, and a flex container.
package objects

import (
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// ColoredBox fills its area with a solid color. A zero Size expands to
// the largest size the constraints allow.
type ColoredBox struct {
	WidgetKey any
	Color     graphics.Color
	Size      graphics.Size
}

func (w ColoredBox) Key() any { return w.WidgetKey }

func (w ColoredBox) CreateRenderObject() render.RenderVariant {
	return render.LeafVariant(&coloredBoxBody{color: w.Color, size: w.Size})
}

func (w ColoredBox) UpdateRenderObject(v render.RenderVariant) {
	body := v.Leaf().(*coloredBoxBody)
	body.color = w.Color
	body.size = w.Size
}

type coloredBoxBody struct {
	color graphics.Color
	size  graphics.Size
}

func (b *coloredBoxBody) Layout(cx *render.LeafLayoutContext) (graphics.Size, error) {
	if b.size.IsEmpty() {
		return cx.Constraints().Biggest(), nil
	}
	return cx.Constraints().Constrain(b.size), nil
}

func (b *coloredBoxBody) Paint(cx *render.LeafPaintContext) (graphics.Layer, error) {
	cx.Canvas().DrawRect(graphics.RectFromSize(cx.Size()), graphics.Paint{Color: b.color})
	return cx.Finish(), nil
}

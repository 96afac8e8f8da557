package objects

import (
	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// FlexDirection selects a flex container's main axis.
type FlexDirection int

const (
	// Horizontal lays children out left to right.
	Horizontal FlexDirection = iota
	// Vertical lays children out top to bottom.
	Vertical
)

// Flex divides its main axis evenly among its children, so a child's
// extent depends on how many siblings it has. That sibling dependence is
// why child layouts under a Flex are cached per sibling count.
type Flex struct {
	WidgetKey    any
	Direction    FlexDirection
	ChildWidgets []core.Widget
}

func (w Flex) Key() any { return w.WidgetKey }

func (w Flex) Children() []core.Widget { return w.ChildWidgets }

func (w Flex) CreateRenderObject() render.RenderVariant {
	return render.MultiVariant(&flexBody{direction: w.Direction})
}

func (w Flex) UpdateRenderObject(v render.RenderVariant) {
	v.Multi().(*flexBody).direction = w.Direction
}

type flexBody struct {
	direction FlexDirection
}

func (b *flexBody) Layout(cx *render.MultiChildLayoutContext) (graphics.Size, error) {
	c := cx.Constraints()
	count := cx.ChildCount()
	if count == 0 {
		return c.Smallest(), nil
	}

	var crossExtent float64
	if b.direction == Horizontal {
		slot := c.MaxWidth / float64(count)
		for i, child := range cx.Children() {
			size, err := cx.LayoutChild(child, graphics.Constraints{
				MinWidth:  slot,
				MaxWidth:  slot,
				MaxHeight: c.MaxHeight,
			})
			if err != nil {
				return graphics.Size{}, err
			}
			cx.PositionChild(child, graphics.Offset{X: float64(i) * slot})
			if size.Height > crossExtent {
				crossExtent = size.Height
			}
		}
		return c.Constrain(graphics.Size{Width: c.MaxWidth, Height: crossExtent}), nil
	}

	slot := c.MaxHeight / float64(count)
	for i, child := range cx.Children() {
		size, err := cx.LayoutChild(child, graphics.Constraints{
			MinHeight: slot,
			MaxHeight: slot,
			MaxWidth:  c.MaxWidth,
		})
		if err != nil {
			return graphics.Size{}, err
		}
		cx.PositionChild(child, graphics.Offset{Y: float64(i) * slot})
		if size.Width > crossExtent {
			crossExtent = size.Width
		}
	}
	return c.Constrain(graphics.Size{Width: crossExtent, Height: c.MaxHeight}), nil
}

func (b *flexBody) Paint(cx *render.MultiChildPaintContext) (graphics.Layer, error) {
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

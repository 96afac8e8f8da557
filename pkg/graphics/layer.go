package graphics

// Layer is a node in the compositable scene graph produced by the paint
// phase. The layer tree is distinct from the element/render tree: it is
// the pipeline's output, handed to a compositor as a whole.
//
// The concrete layer set is closed: leaf layers own drawing data directly
// (PictureLayer), container layers own an ordered child list
// (ContainerLayer), and effect layers own exactly one child plus an effect
// parameter (OpacityLayer, ClipRectLayer, ColorFilterLayer, TransformLayer).
type Layer interface {
	// ID returns the stable identity of this layer.
	ID() LayerID

	// Bounds returns the layer's bounding rectangle in its own coordinate
	// space, including children.
	Bounds() Rect

	// VisitChildren calls the visitor for each child layer in paint order.
	VisitChildren(visitor func(Layer))
}

// PictureLayer is a leaf layer holding recorded drawing commands.
type PictureLayer struct {
	id      LayerID
	Content *DisplayList
	Offset  Offset
}

// NewPictureLayer creates a leaf layer from a display list.
func NewPictureLayer(content *DisplayList, offset Offset) *PictureLayer {
	return &PictureLayer{id: NextLayerID(), Content: content, Offset: offset}
}

func (l *PictureLayer) ID() LayerID { return l.id }

func (l *PictureLayer) Bounds() Rect {
	if l.Content == nil {
		return Rect{}
	}
	return RectFromSize(l.Content.Size()).Translate(l.Offset)
}

func (l *PictureLayer) VisitChildren(func(Layer)) {}

// ContainerLayer groups an ordered list of child layers.
type ContainerLayer struct {
	id       LayerID
	Children []Layer
	Offset   Offset
}

// NewContainerLayer creates an empty container layer.
func NewContainerLayer(offset Offset) *ContainerLayer {
	return &ContainerLayer{id: NextLayerID(), Offset: offset}
}

// Append adds a child layer. Nil children are ignored so callers can append
// the result of an effect fast path that produced nothing.
func (l *ContainerLayer) Append(child Layer) {
	if child == nil {
		return
	}
	l.Children = append(l.Children, child)
}

func (l *ContainerLayer) ID() LayerID { return l.id }

func (l *ContainerLayer) Bounds() Rect {
	var bounds Rect
	for _, child := range l.Children {
		bounds = bounds.Union(child.Bounds())
	}
	return bounds.Translate(l.Offset)
}

func (l *ContainerLayer) VisitChildren(visitor func(Layer)) {
	for _, child := range l.Children {
		visitor(child)
	}
}

// OpacityLayer applies alpha blending to a single child.
type OpacityLayer struct {
	id      LayerID
	Child   Layer
	Opacity float64
}

// NewOpacityLayer wraps a child with a per-pixel opacity effect.
func NewOpacityLayer(child Layer, opacity float64) *OpacityLayer {
	return &OpacityLayer{id: NextLayerID(), Child: child, Opacity: opacity}
}

func (l *OpacityLayer) ID() LayerID { return l.id }

func (l *OpacityLayer) Bounds() Rect { return childBounds(l.Child) }

func (l *OpacityLayer) VisitChildren(visitor func(Layer)) { visitChild(l.Child, visitor) }

// ClipMode selects how a clip layer's shape is applied.
type ClipMode int

const (
	// ClipNone performs no clipping.
	ClipNone ClipMode = iota
	// ClipHard clips with a hard (aliased) edge.
	ClipHard
	// ClipAntiAlias clips with anti-aliased edges.
	ClipAntiAlias
)

// ClipRectLayer clips a single child to a rectangle.
type ClipRectLayer struct {
	id    LayerID
	Child Layer
	Rect  Rect
	Mode  ClipMode
}

// NewClipRectLayer wraps a child with a rectangular clip.
func NewClipRectLayer(child Layer, rect Rect, mode ClipMode) *ClipRectLayer {
	return &ClipRectLayer{id: NextLayerID(), Child: child, Rect: rect, Mode: mode}
}

func (l *ClipRectLayer) ID() LayerID { return l.id }

func (l *ClipRectLayer) Bounds() Rect { return childBounds(l.Child).Intersect(l.Rect) }

func (l *ClipRectLayer) VisitChildren(visitor func(Layer)) { visitChild(l.Child, visitor) }

// ColorFilterLayer applies a color matrix to a single child.
type ColorFilterLayer struct {
	id     LayerID
	Child  Layer
	Matrix ColorMatrix
}

// NewColorFilterLayer wraps a child with a color matrix filter.
func NewColorFilterLayer(child Layer, matrix ColorMatrix) *ColorFilterLayer {
	return &ColorFilterLayer{id: NextLayerID(), Child: child, Matrix: matrix}
}

func (l *ColorFilterLayer) ID() LayerID { return l.id }

func (l *ColorFilterLayer) Bounds() Rect { return childBounds(l.Child) }

func (l *ColorFilterLayer) VisitChildren(visitor func(Layer)) { visitChild(l.Child, visitor) }

// TransformLayer applies an affine transform to a single child.
type TransformLayer struct {
	id     LayerID
	Child  Layer
	Matrix Matrix
}

// NewTransformLayer wraps a child with an affine transform.
func NewTransformLayer(child Layer, matrix Matrix) *TransformLayer {
	return &TransformLayer{id: NextLayerID(), Child: child, Matrix: matrix}
}

func (l *TransformLayer) ID() LayerID { return l.id }

func (l *TransformLayer) Bounds() Rect {
	bounds := childBounds(l.Child)
	if bounds.IsEmpty() || l.Matrix.IsIdentity() {
		return bounds
	}
	corners := [4]Offset{
		l.Matrix.Apply(Offset{X: bounds.Left, Y: bounds.Top}),
		l.Matrix.Apply(Offset{X: bounds.Right, Y: bounds.Top}),
		l.Matrix.Apply(Offset{X: bounds.Left, Y: bounds.Bottom}),
		l.Matrix.Apply(Offset{X: bounds.Right, Y: bounds.Bottom}),
	}
	out := Rect{Left: corners[0].X, Top: corners[0].Y, Right: corners[0].X, Bottom: corners[0].Y}
	for _, c := range corners[1:] {
		out = out.Union(Rect{Left: c.X, Top: c.Y, Right: c.X, Bottom: c.Y})
	}
	return out
}

func (l *TransformLayer) VisitChildren(visitor func(Layer)) { visitChild(l.Child, visitor) }

// WalkLayers visits the layer and all of its descendants depth-first.
func WalkLayers(root Layer, visitor func(Layer)) {
	if root == nil {
		return
	}
	visitor(root)
	root.VisitChildren(func(child Layer) {
		WalkLayers(child, visitor)
	})
}

// CountLayers returns the total number of layers in the tree.
func CountLayers(root Layer) int {
	count := 0
	WalkLayers(root, func(Layer) { count++ })
	return count
}

func childBounds(child Layer) Rect {
	if child == nil {
		return Rect{}
	}
	return child.Bounds()
}

func visitChild(child Layer, visitor func(Layer)) {
	if child != nil {
		visitor(child)
	}
}

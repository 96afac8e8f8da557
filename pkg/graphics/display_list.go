package graphics

// Paint describes how a shape is filled.
type Paint struct {
	Color Color
}

// DefaultPaint returns an opaque black paint.
func DefaultPaint() Paint {
	return Paint{Color: RGB(0, 0, 0)}
}

// Canvas is the drawing surface handed to leaf render objects during paint.
// The pipeline treats it as an opaque sink; the only implementation in this
// module records into a DisplayList.
type Canvas interface {
	Save()
	Restore()
	Translate(dx, dy float64)
	DrawRect(rect Rect, paint Paint)
	DrawRRect(rect Rect, radius float64, paint Paint)
	DrawLine(from, to Offset, width float64, paint Paint)
}

// DisplayList is an immutable list of recorded drawing operations.
// It can be replayed onto any Canvas implementation.
type DisplayList struct {
	ops  []displayOp
	size Size
}

// Paint replays the recorded operations onto the provided canvas.
func (d *DisplayList) Paint(canvas Canvas) {
	for _, op := range d.ops {
		op.execute(canvas)
	}
}

// Size returns the size recorded when the display list was created.
func (d *DisplayList) Size() Size {
	return d.size
}

// OpCount returns the number of recorded operations.
func (d *DisplayList) OpCount() int {
	return len(d.ops)
}

// PictureRecorder records drawing commands into a display list.
type PictureRecorder struct {
	ops       []displayOp
	recording bool
	size      Size
}

// BeginRecording starts a new recording session.
func (r *PictureRecorder) BeginRecording(size Size) Canvas {
	r.ops = r.ops[:0]
	r.recording = true
	r.size = size
	return &recordingCanvas{recorder: r}
}

// EndRecording finishes the recording and returns a display list.
func (r *PictureRecorder) EndRecording() *DisplayList {
	if !r.recording {
		return &DisplayList{size: r.size}
	}
	r.recording = false
	ops := make([]displayOp, len(r.ops))
	copy(ops, r.ops)
	return &DisplayList{ops: ops, size: r.size}
}

func (r *PictureRecorder) append(op displayOp) {
	if !r.recording {
		return
	}
	r.ops = append(r.ops, op)
}

type displayOp interface {
	execute(canvas Canvas)
}

type recordingCanvas struct {
	recorder *PictureRecorder
}

func (c *recordingCanvas) Save()    { c.recorder.append(opSave{}) }
func (c *recordingCanvas) Restore() { c.recorder.append(opRestore{}) }

func (c *recordingCanvas) Translate(dx, dy float64) {
	c.recorder.append(opTranslate{dx: dx, dy: dy})
}

func (c *recordingCanvas) DrawRect(rect Rect, paint Paint) {
	c.recorder.append(opDrawRect{rect: rect, paint: paint})
}

func (c *recordingCanvas) DrawRRect(rect Rect, radius float64, paint Paint) {
	c.recorder.append(opDrawRRect{rect: rect, radius: radius, paint: paint})
}

func (c *recordingCanvas) DrawLine(from, to Offset, width float64, paint Paint) {
	c.recorder.append(opDrawLine{from: from, to: to, width: width, paint: paint})
}

type opSave struct{}

func (opSave) execute(canvas Canvas) { canvas.Save() }

type opRestore struct{}

func (opRestore) execute(canvas Canvas) { canvas.Restore() }

type opTranslate struct {
	dx, dy float64
}

func (o opTranslate) execute(canvas Canvas) { canvas.Translate(o.dx, o.dy) }

type opDrawRect struct {
	rect  Rect
	paint Paint
}

func (o opDrawRect) execute(canvas Canvas) { canvas.DrawRect(o.rect, o.paint) }

type opDrawRRect struct {
	rect   Rect
	radius float64
	paint  Paint
}

func (o opDrawRRect) execute(canvas Canvas) { canvas.DrawRRect(o.rect, o.radius, o.paint) }

type opDrawLine struct {
	from, to Offset
	width    float64
	paint    Paint
}

func (o opDrawLine) execute(canvas Canvas) { canvas.DrawLine(o.from, o.to, o.width, o.paint) }

package pipeline

import (
	"sync"
	"time"

	"github.com/go-fern/fern/pkg/core"
	"github.com/go-fern/fern/pkg/errors"
	"github.com/go-fern/fern/pkg/graphics"
	"github.com/go-fern/fern/pkg/render"
)

// FrameResult summarizes one executed frame.
type FrameResult struct {
	// Layer is the root of the layer tree after this frame. Unchanged
	// from the previous frame when the paint phase was skipped.
	Layer graphics.Layer

	FrameNumber uint64

	// Per-phase work counts.
	BuiltCount   int
	LaidOutCount int
	PaintedCount int

	// BuildIterations is the number of build passes the frame needed.
	BuildIterations int

	FrameTime time.Duration

	// OverBudget is set when FrameTime exceeded the configured budget.
	// The frame is never retried; the next frame simply starts late.
	OverBudget bool
}

// Stats aggregates coordinator activity across frames.
type Stats struct {
	Frames           uint64
	OverBudgetFrames uint64
	LastFrameTime    time.Duration
	LastBuilt        int
	LastLaidOut      int
	LastPainted      int
}

// Coordinator owns the element tree and drives the three phases in
// strict order: build, then layout, then paint. Phases never re-enter
// within a frame; work discovered mid-phase for an earlier phase waits
// for the next frame.
type Coordinator struct {
	config Config

	tree        *render.Tree
	owner       *core.BuildOwner
	cache       *render.LayoutCache
	layoutDirty *render.DirtySet
	paintDirty  *render.DirtySet

	rootConstraints graphics.Constraints
	frame           uint64

	// now is the frame clock; swapped out in tests to simulate slow frames.
	now func() time.Time

	// mu guards the published root layer; RootLayer may be called from
	// another goroutine (the compositor) while a frame executes.
	mu        sync.Mutex
	rootLayer graphics.Layer

	statsMu sync.Mutex
	stats   Stats
}

// NewCoordinator creates a coordinator with an empty tree.
func NewCoordinator(config Config) *Coordinator {
	c := &Coordinator{
		config:          config,
		tree:            render.NewTree(),
		cache:           render.NewLayoutCache(),
		layoutDirty:     render.NewDirtySet(render.ShallowestFirst),
		paintDirty:      render.NewDirtySet(render.DeepestFirst),
		rootConstraints: graphics.Tight(graphics.Size{Width: 800, Height: 600}),
		now:             time.Now,
	}
	c.owner = core.NewBuildOwner(c.tree)
	c.owner.Parallel = config.ParallelBuild
	c.owner.SetMaxIterations(config.MaxBuildIterations)
	c.owner.MarkLayout = c.MarkNeedsLayout
	return c
}

// Tree returns the element tree.
func (c *Coordinator) Tree() *render.Tree { return c.tree }

// Owner returns the build owner.
func (c *Coordinator) Owner() *core.BuildOwner { return c.owner }

// Mount inflates the root widget.
func (c *Coordinator) Mount(w core.Widget) render.ElementID {
	return c.owner.Mount(w)
}

// SetRootConstraints replaces the constraints applied to the root (the
// window size, typically) and schedules a relayout of the whole tree.
func (c *Coordinator) SetRootConstraints(constraints graphics.Constraints) {
	c.rootConstraints = constraints
	if root := c.tree.Root(); !root.IsNil() {
		c.MarkNeedsLayout(root)
	}
}

// ScheduleBuild marks an element for rebuild next frame.
func (c *Coordinator) ScheduleBuild(id render.ElementID) {
	c.owner.ScheduleBuild(id)
}

// MarkNeedsLayout marks an element layout-dirty, invalidating its cache
// entries and propagating to the nearest relayout boundary.
func (c *Coordinator) MarkNeedsLayout(id render.ElementID) {
	render.MarkLayoutDirty(c.tree, c.cache, c.layoutDirty, id)
}

// MarkNeedsPaint marks an element paint-dirty, propagating to the root.
func (c *Coordinator) MarkNeedsPaint(id render.ElementID) {
	render.MarkPaintDirty(c.tree, c.paintDirty, id)
}

// HasDirtyBuild reports pending build work.
func (c *Coordinator) HasDirtyBuild() bool { return c.owner.HasDirty() }

// HasDirtyLayout reports pending layout work.
func (c *Coordinator) HasDirtyLayout() bool { return c.layoutDirty.Len() > 0 }

// HasDirtyPaint reports pending paint work.
func (c *Coordinator) HasDirtyPaint() bool { return c.paintDirty.Len() > 0 }

// NeedsFrame reports whether any phase has pending work.
func (c *Coordinator) NeedsFrame() bool {
	return c.HasDirtyBuild() || c.HasDirtyLayout() || c.HasDirtyPaint()
}

// RootLayer returns the most recently published layer tree. Safe to call
// concurrently with ExecuteFrame.
func (c *Coordinator) RootLayer() graphics.Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rootLayer
}

func (c *Coordinator) publishRootLayer(layer graphics.Layer) {
	c.mu.Lock()
	c.rootLayer = layer
	c.mu.Unlock()
}

// Stats returns aggregated frame statistics.
func (c *Coordinator) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// FlushBuild runs the build phase alone, returning elements built and
// passes taken. Most callers want ExecuteFrame; the per-phase entry
// points exist for embedders that interleave phases with their own work.
func (c *Coordinator) FlushBuild() (int, int, error) {
	return c.owner.FlushBuild()
}

// FlushLayout runs the layout phase alone.
func (c *Coordinator) FlushLayout() (int, error) {
	return c.flushLayout()
}

// FlushPaint runs the paint phase alone against the current frame number.
func (c *Coordinator) FlushPaint() (int, error) {
	return c.flushPaint()
}

// ExecuteFrame runs one frame. The first fatal error aborts the
// remainder of the frame but the result still carries the work counts
// accumulated so far. The frame is never retried on budget overrun.
func (c *Coordinator) ExecuteFrame() (FrameResult, error) {
	start := c.now()
	c.frame++
	result := FrameResult{FrameNumber: c.frame}

	if !c.config.SkipCleanPhases || c.owner.HasDirty() {
		built, iterations, err := c.owner.FlushBuild()
		result.BuiltCount = built
		result.BuildIterations = iterations
		if err != nil {
			c.finishFrame(&result, start)
			return result, err
		}
	}

	if !c.config.SkipCleanPhases || c.layoutDirty.Len() > 0 {
		laidOut, err := c.flushLayout()
		result.LaidOutCount = laidOut
		if err != nil {
			c.finishFrame(&result, start)
			return result, err
		}
	}

	if !c.config.SkipCleanPhases || c.paintDirty.Len() > 0 {
		painted, err := c.flushPaint()
		result.PaintedCount = painted
		if err != nil {
			c.finishFrame(&result, start)
			return result, err
		}
	}

	// Frame end: defunct subtrees left detached by reconciliation, and
	// purge their cache and dirty-set residue.
	for _, id := range c.tree.SweepDetached() {
		c.cache.Invalidate(id)
		c.layoutDirty.Discard(id)
		c.paintDirty.Discard(id)
	}

	result.Layer = c.RootLayer()
	c.finishFrame(&result, start)
	return result, nil
}

func (c *Coordinator) finishFrame(result *FrameResult, start time.Time) {
	result.FrameTime = c.now().Sub(start)
	result.OverBudget = result.FrameTime > c.config.FrameBudget()

	c.statsMu.Lock()
	c.stats.Frames++
	if result.OverBudget {
		c.stats.OverBudgetFrames++
	}
	c.stats.LastFrameTime = result.FrameTime
	c.stats.LastBuilt = result.BuiltCount
	c.stats.LastLaidOut = result.LaidOutCount
	c.stats.LastPainted = result.PaintedCount
	c.statsMu.Unlock()
}

// flushLayout drains the layout dirty set shallowest-first. Elements
// already laid out through an ancestor's recursion are skipped when
// their turn comes.
func (c *Coordinator) flushLayout() (int, error) {
	count := 0
	for {
		id, ok := c.layoutDirty.Take()
		if !ok {
			return count, nil
		}
		el := c.tree.Get(id)
		if el == nil || el.Lifecycle() != render.LifecycleActive || !el.NeedsLayout() {
			continue
		}

		constraints, has := el.Constraints()
		if id == c.tree.Root() {
			constraints = c.rootConstraints
		} else if !has {
			// Never laid out and not reached through a dirty ancestor:
			// its ancestor chain carries the mark, so it will be laid
			// out when the ancestor flushes.
			continue
		}

		_, laidOut, err := render.LayoutElement(c.tree, c.cache, id, constraints, c.config.StrictConstraints)
		if err != nil {
			if layoutErr, ok := err.(*errors.LayoutError); ok {
				errors.ReportLayoutError(layoutErr)
			}
			return count, err
		}
		count += len(laidOut)
		for _, laid := range laidOut {
			c.MarkNeedsPaint(laid)
		}
	}
}

// flushPaint drains the paint dirty set deepest-first so every child
// layer exists before its parent captures it, then publishes the root
// element's layer.
func (c *Coordinator) flushPaint() (int, error) {
	count := 0
	for {
		id, ok := c.paintDirty.Take()
		if !ok {
			break
		}
		el := c.tree.Get(id)
		if el == nil || el.Lifecycle() != render.LifecycleActive || !el.NeedsPaint() {
			continue
		}
		if _, err := render.PaintElement(c.tree, id, c.frame); err != nil {
			if paintErr, ok := err.(*errors.PaintError); ok {
				errors.ReportPaintError(paintErr)
			}
			return count, err
		}
		count++
	}

	root := c.tree.Root()
	if root.IsNil() {
		return count, nil
	}
	if el := c.tree.Get(root); el != nil {
		c.publishRootLayer(el.Layer())
	}
	return count, nil
}

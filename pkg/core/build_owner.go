package core

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/go-fern/fern/pkg/errors"
	"github.com/go-fern/fern/pkg/render"
)

// DefaultMaxIterations caps the number of build passes in one flush. An
// element that reschedules itself from its own Build never converges;
// the cap turns that loop into a reported error instead of a hang.
const DefaultMaxIterations = 100

// BuildOwner drives the build phase: it tracks build-dirty elements and
// drains them in depth-ordered passes, reconciling each element's
// children against its freshly built configuration.
type BuildOwner struct {
	tree  *render.Tree
	dirty *render.DirtySet
	mu    sync.Mutex

	maxIterations int

	// Parallel rebuilds disjoint dirty subtrees concurrently. Rebuilds
	// inside one subtree stay sequential.
	Parallel bool

	// MarkLayout schedules downstream layout work for elements the build
	// inflated or updated. Installed by the pipeline coordinator. Calls
	// are queued during a flush and delivered serially once the batch
	// finishes, so parallel subtree rebuilds never touch the layout
	// dirty set, the layout cache, or shared ancestors' flags
	// concurrently.
	MarkLayout func(render.ElementID)

	// pendingLayout holds queued MarkLayout targets; guarded by mu.
	pendingLayout []render.ElementID

	// OnNeedsFrame is called when a new element is scheduled for rebuild,
	// signalling the platform that a frame should be rendered.
	OnNeedsFrame func()
}

// NewBuildOwner creates a build owner over the tree.
func NewBuildOwner(tree *render.Tree) *BuildOwner {
	return &BuildOwner{
		tree:          tree,
		dirty:         render.NewDirtySet(render.ShallowestFirst),
		maxIterations: DefaultMaxIterations,
	}
}

// SetMaxIterations overrides the build pass cap. Values below one restore
// the default.
func (b *BuildOwner) SetMaxIterations(n int) {
	if n < 1 {
		n = DefaultMaxIterations
	}
	b.maxIterations = n
}

// Mount inflates the root widget and schedules its first build.
func (b *BuildOwner) Mount(w Widget) render.ElementID {
	id := b.tree.Insert(render.NilElement, w, variantFor(w))
	b.markLayout(id)
	b.ScheduleBuild(id)
	return id
}

// ScheduleBuild marks an element as needing rebuild in the next pass.
func (b *BuildOwner) ScheduleBuild(id render.ElementID) {
	el := b.tree.Get(id)
	if el == nil || el.Lifecycle() == render.LifecycleDefunct {
		return
	}
	el.SetNeedsBuild(true)

	b.mu.Lock()
	added := b.dirty.Add(id, b.tree.Depth(id))
	b.mu.Unlock()

	if added && b.OnNeedsFrame != nil {
		b.OnNeedsFrame()
	}
}

// HasDirty reports whether any element awaits rebuilding.
func (b *BuildOwner) HasDirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty.Len() > 0
}

// FlushBuild drains the dirty set in passes until it is empty. Within a
// pass, elements rebuild shallowest-first and descend into the children
// they inflate or update; elements scheduled during a pass (state
// changes, provider notifications) land in the next pass. Exceeding the
// pass cap aborts with a build error.
func (b *BuildOwner) FlushBuild() (built, iterations int, err error) {
	defer b.flushLayoutMarks()
	for {
		batch := b.drain()
		if len(batch) == 0 {
			return built, iterations, nil
		}
		iterations++
		if iterations > b.maxIterations {
			buildErr := &errors.BuildError{
				Op:         "core.BuildOwner.FlushBuild",
				Iterations: iterations,
			}
			errors.ReportBuildError(buildErr)
			return built, iterations, buildErr
		}
		if b.Parallel {
			built += b.rebuildParallel(batch)
		} else {
			for _, id := range batch {
				built += b.rebuild(id)
			}
		}
	}
}

func (b *BuildOwner) drain() []render.ElementID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dirty.Len() == 0 {
		return nil
	}
	batch := make([]render.ElementID, 0, b.dirty.Len())
	for {
		id, ok := b.dirty.Take()
		if !ok {
			return batch
		}
		batch = append(batch, id)
	}
}

// rebuildParallel groups the batch into disjoint subtrees and rebuilds
// the groups concurrently. The batch arrives shallowest-first, so a dirty
// element under an earlier dirty element always folds into the earlier
// element's group.
func (b *BuildOwner) rebuildParallel(batch []render.ElementID) int {
	groups := make([][]render.ElementID, 0, len(batch))
	roots := make([]render.ElementID, 0, len(batch))
	for _, id := range batch {
		folded := false
		for i, root := range roots {
			if b.isDescendantOf(id, root) {
				groups[i] = append(groups[i], id)
				folded = true
				break
			}
		}
		if !folded {
			roots = append(roots, id)
			groups = append(groups, []render.ElementID{id})
		}
	}

	var built atomic.Int64
	var g errgroup.Group
	for _, group := range groups {
		group := group
		g.Go(func() error {
			n := 0
			for _, id := range group {
				n += b.rebuild(id)
			}
			built.Add(int64(n))
			return nil
		})
	}
	g.Wait()
	return int(built.Load())
}

func (b *BuildOwner) isDescendantOf(id, ancestor render.ElementID) bool {
	found := false
	b.tree.VisitAncestors(id, func(current render.ElementID, _ *render.Element) bool {
		if current == ancestor {
			found = true
			return false
		}
		return true
	})
	return found
}

// rebuild processes one element and descends into the children its
// configuration declares. Returns the number of elements built.
func (b *BuildOwner) rebuild(id render.ElementID) int {
	el := b.tree.Get(id)
	if el == nil || el.Lifecycle() != render.LifecycleActive || !el.NeedsBuild() {
		return 0
	}
	el.SetNeedsBuild(false)
	w, ok := el.Config().(Widget)
	if !ok {
		return 0
	}
	built := 1

	var children []Widget
	switch w := w.(type) {
	case ProviderWidget:
		old, had := b.tree.SetProvider(id, w.ProviderKey(), w.ProviderValue())
		if had && w.ShouldNotify(old) {
			for _, dep := range b.tree.ProviderDependents(id) {
				b.ScheduleBuild(dep)
			}
		}
		children = []Widget{w.Child()}
	case StatelessWidget:
		child, ok := b.safeBuild(id, w)
		if !ok {
			// Build panicked; keep the previous children.
			return built
		}
		children = []Widget{child}
	case SingleChildRenderWidget:
		children = []Widget{w.Child()}
	case MultiChildRenderWidget:
		children = w.Children()
	}

	built += b.reconcile(id, compactWidgets(children))
	return built
}

// safeBuild runs a widget's Build, converting a panic into a reported
// build error instead of unwinding the whole flush.
func (b *BuildOwner) safeBuild(id render.ElementID, w StatelessWidget) (child Widget, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportBuildError(&errors.BuildError{
				Op:         "core.BuildOwner.rebuild",
				Widget:     fmt.Sprintf("%T", w),
				Element:    uint64(id),
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
			})
			child, ok = nil, false
		}
	}()
	return w.Build(&BuildContext{owner: b, id: id}), true
}

// reconcile matches the element's existing children against the widgets
// its rebuild produced: by explicit key when present, else by position
// and concrete type. Matched children update in place, unmatched old
// children deactivate, and leftover widgets inflate new elements.
func (b *BuildOwner) reconcile(parent render.ElementID, widgets []Widget) int {
	old := b.tree.Children(parent)

	matches := make([]render.ElementID, len(widgets))
	used := make(map[render.ElementID]bool, len(old))

	byKey := make(map[any]render.ElementID)
	for _, id := range old {
		if w := b.widgetOf(id); w != nil && w.Key() != nil {
			byKey[w.Key()] = id
		}
	}

	cursor := 0
	for i, w := range widgets {
		if key := w.Key(); key != nil {
			if id, ok := byKey[key]; ok && !used[id] && b.sameWidgetType(id, w) {
				matches[i] = id
				used[id] = true
			}
			continue
		}
		// Positional match: consume one unkeyed slot whether it matches
		// or not, so a type change at a position replaces the element.
		for cursor < len(old) {
			id := old[cursor]
			cursor++
			if used[id] {
				continue
			}
			existing := b.widgetOf(id)
			if existing == nil || existing.Key() != nil {
				continue
			}
			if reflect.TypeOf(existing) == reflect.TypeOf(w) {
				matches[i] = id
				used[id] = true
			}
			break
		}
	}

	for _, id := range old {
		if !used[id] {
			b.tree.Deactivate(id)
		}
	}

	// In-place update is only valid when survivors already sit in widget
	// order and inflations land at the tail; anything else rebuilds the
	// child list through deactivate/reattach.
	reorder := !inflationsAtTail(matches) ||
		!ordersMatch(b.tree.Children(parent), matches)
	if reorder {
		for _, id := range matches {
			if !id.IsNil() {
				b.tree.Deactivate(id)
			}
		}
	}

	built := 0
	for i, w := range widgets {
		if id := matches[i]; !id.IsNil() {
			if reorder {
				b.tree.Reattach(id, parent)
			}
			built += b.update(id, w)
		} else {
			built += b.inflate(parent, w)
		}
	}
	return built
}

// update replaces a matched element's configuration in place and
// descends into it. An element whose configuration is unchanged and
// which is not separately scheduled keeps its whole subtree untouched.
func (b *BuildOwner) update(id render.ElementID, w Widget) int {
	el := b.tree.Get(id)
	if el == nil {
		return 0
	}
	if old, ok := el.Config().(Widget); ok && !el.NeedsBuild() && sameConfig(old, w) {
		return 0
	}
	el.SetConfig(w)
	if rw, ok := w.(RenderWidget); ok {
		rw.UpdateRenderObject(el.Variant())
	}
	b.markLayout(id)
	el.SetNeedsBuild(true)
	return b.rebuild(id)
}

// inflate creates a fresh element for a widget with no reusable match.
func (b *BuildOwner) inflate(parent render.ElementID, w Widget) int {
	id := b.tree.Insert(parent, w, variantFor(w))
	b.markLayout(id)
	return b.rebuild(id)
}

func (b *BuildOwner) markLayout(id render.ElementID) {
	if b.MarkLayout == nil {
		return
	}
	b.mu.Lock()
	b.pendingLayout = append(b.pendingLayout, id)
	b.mu.Unlock()
}

// flushLayoutMarks delivers queued layout marks on the calling goroutine.
func (b *BuildOwner) flushLayoutMarks() {
	b.mu.Lock()
	pending := b.pendingLayout
	b.pendingLayout = nil
	b.mu.Unlock()
	for _, id := range pending {
		b.MarkLayout(id)
	}
}

func (b *BuildOwner) widgetOf(id render.ElementID) Widget {
	el := b.tree.Get(id)
	if el == nil {
		return nil
	}
	w, _ := el.Config().(Widget)
	return w
}

func (b *BuildOwner) sameWidgetType(id render.ElementID, w Widget) bool {
	existing := b.widgetOf(id)
	return existing != nil && reflect.TypeOf(existing) == reflect.TypeOf(w)
}

// sameConfig reports whether two widgets are interchangeable
// configurations. Widgets with uncomparable fields (child lists, funcs)
// never compare equal and always update.
func sameConfig(a, b Widget) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func compactWidgets(widgets []Widget) []Widget {
	out := make([]Widget, 0, len(widgets))
	for _, w := range widgets {
		if w != nil {
			out = append(out, w)
		}
	}
	return out
}

// inflationsAtTail reports whether every unmatched widget sits after the
// last matched one.
func inflationsAtTail(matches []render.ElementID) bool {
	seenNil := false
	for _, id := range matches {
		if id.IsNil() {
			seenNil = true
		} else if seenNil {
			return false
		}
	}
	return true
}

// ordersMatch reports whether the surviving children already appear in
// the order the matches dictate.
func ordersMatch(children, matches []render.ElementID) bool {
	desired := make([]render.ElementID, 0, len(matches))
	for _, id := range matches {
		if !id.IsNil() {
			desired = append(desired, id)
		}
	}
	if len(children) != len(desired) {
		return false
	}
	for i := range children {
		if children[i] != desired[i] {
			return false
		}
	}
	return true
}

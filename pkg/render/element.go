package render

import (
	"fmt"

	"github.com/go-fern/fern/pkg/graphics"
)

// Lifecycle tracks an element's position in its mount/unmount cycle.
//
// Transitions are monotonic except Inactive -> Active (reactivation of a
// temporarily detached element). Defunct is terminal.
type Lifecycle int

const (
	// LifecycleInitial is the state of a freshly created element before
	// it is attached to the tree.
	LifecycleInitial Lifecycle = iota
	// LifecycleActive means the element is attached and participates in
	// build, layout, and paint.
	LifecycleActive
	// LifecycleInactive means the element is temporarily detached (for
	// example during a reorder) and may be reattached before the frame
	// completes.
	LifecycleInactive
	// LifecycleDefunct means the element was permanently removed. This
	// state is never left.
	LifecycleDefunct
)

func (l Lifecycle) String() string {
	switch l {
	case LifecycleInitial:
		return "initial"
	case LifecycleActive:
		return "active"
	case LifecycleInactive:
		return "inactive"
	case LifecycleDefunct:
		return "defunct"
	default:
		return "invalid"
	}
}

// canTransition reports whether the lifecycle state machine permits the move.
func canTransition(from, to Lifecycle) bool {
	switch from {
	case LifecycleInitial:
		return to == LifecycleActive
	case LifecycleActive:
		return to == LifecycleInactive || to == LifecycleDefunct
	case LifecycleInactive:
		return to == LifecycleActive || to == LifecycleDefunct
	default:
		return false
	}
}

// Config is the widget configuration snapshot stored on an element. The
// tree treats it as opaque; reconciliation in the build phase compares
// configs by key and concrete type.
type Config interface {
	// Key returns the explicit reconciliation key, or nil when the
	// config should be matched by position and type.
	Key() any
}

// ProviderKey is the stable type-key under which a provider element
// exposes a value to its descendants. Lookups compare keys directly
// instead of doing runtime type-identity checks on the ancestor walk.
type ProviderKey string

// providerRecord is the typed registry entry stored on a provider element.
type providerRecord struct {
	key        ProviderKey
	value      any
	dependents map[ElementID]struct{}
}

// Element is a node in the arena. It owns the widget configuration
// snapshot, the render-object variant, and per-phase dirty state. The
// parent field is a lookup key, never an ownership edge: the arena
// exclusively owns every element.
type Element struct {
	id       ElementID
	config   Config
	variant  RenderVariant
	parent   ElementID
	children []ElementID

	lifecycle Lifecycle

	// depth is cached and recomputed lazily after reparenting.
	depth      int
	depthValid bool

	needsBuild  bool
	needsLayout bool
	needsPaint  bool

	// constraints are the last constraints this element was laid out
	// with; valid only when hasConstraints is set.
	constraints    graphics.Constraints
	hasConstraints bool
	size           graphics.Size

	// offset is the position assigned by the parent during its layout,
	// relative to the parent's origin.
	offset graphics.Offset

	// layer is the element's most recent paint output, origin-relative.
	// paintedFrame records the frame that produced it.
	layer        graphics.Layer
	paintedFrame uint64

	provider *providerRecord

	// dependencies is the reverse index of provider registrations, so an
	// unmount can deregister this element from every provider it depends
	// on without a tree scan.
	dependencies map[ElementID]struct{}
}

// ID returns the element's stable handle.
func (e *Element) ID() ElementID { return e.id }

// Config returns the widget configuration snapshot.
func (e *Element) Config() Config { return e.config }

// SetConfig replaces the configuration snapshot (in-place update during
// reconciliation).
func (e *Element) SetConfig(config Config) { e.config = config }

// Variant returns the render-object variant.
func (e *Element) Variant() RenderVariant { return e.variant }

// Parent returns the parent handle, or NilElement for the root.
func (e *Element) Parent() ElementID { return e.parent }

// Lifecycle returns the current lifecycle state.
func (e *Element) Lifecycle() Lifecycle { return e.lifecycle }

// transition moves the lifecycle state machine, panicking on an invalid
// move. Lifecycle violations indicate a pipeline bug, not bad user input.
func (e *Element) transition(to Lifecycle) {
	if !canTransition(e.lifecycle, to) {
		panic(fmt.Sprintf("render: invalid lifecycle transition %s -> %s on %s",
			e.lifecycle, to, e.id))
	}
	e.lifecycle = to
}

// NeedsBuild returns true if the element is scheduled for rebuild.
func (e *Element) NeedsBuild() bool { return e.needsBuild }

// SetNeedsBuild flags or clears the rebuild mark.
func (e *Element) SetNeedsBuild(v bool) { e.needsBuild = v }

// NeedsLayout returns true if the element's size is stale.
func (e *Element) NeedsLayout() bool { return e.needsLayout }

// NeedsPaint returns true if the element's layer is stale.
func (e *Element) NeedsPaint() bool { return e.needsPaint }

// Size returns the size computed by the last layout.
func (e *Element) Size() graphics.Size { return e.size }

// Offset returns the position assigned by the parent's layout.
func (e *Element) Offset() graphics.Offset { return e.offset }

// Constraints returns the constraints from the last layout and whether
// the element has been laid out at all.
func (e *Element) Constraints() (graphics.Constraints, bool) {
	return e.constraints, e.hasConstraints
}

// Layer returns the element's most recent paint output, or nil.
func (e *Element) Layer() graphics.Layer { return e.layer }

// hasTightConstraints reports whether the element is a relayout boundary:
// its parent dictates its exact size, so a size change inside its subtree
// can never propagate above it.
func (e *Element) hasTightConstraints() bool {
	return e.hasConstraints && e.constraints.IsTight()
}

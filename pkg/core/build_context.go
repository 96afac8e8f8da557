package core

import "github.com/go-fern/fern/pkg/render"

// BuildContext is the element's view of the tree during its own build.
// It is only valid for the duration of the Build call it was passed to.
type BuildContext struct {
	owner *BuildOwner
	id    render.ElementID
}

// ElementID returns the element being built.
func (cx *BuildContext) ElementID() render.ElementID { return cx.id }

// DependOn looks up the nearest ancestor provider of the key and
// registers this element as a dependent, so a notifying value change
// schedules it for rebuild. Returns the provided value.
func (cx *BuildContext) DependOn(key render.ProviderKey) (any, bool) {
	tree := cx.owner.tree
	providerID, value, ok := tree.FindProvider(cx.id, key)
	if !ok {
		return nil, false
	}
	tree.AddProviderDependent(providerID, cx.id)
	return value, true
}

// VisitAncestors walks from the element's parent toward the root,
// calling the visitor with each ancestor's handle and widget until the
// visitor returns false or the root is passed.
func (cx *BuildContext) VisitAncestors(visitor func(render.ElementID, Widget) bool) {
	cx.owner.tree.VisitAncestors(cx.id, func(id render.ElementID, el *render.Element) bool {
		w, _ := el.Config().(Widget)
		return visitor(id, w)
	})
}

// FindAncestor walks toward the root and returns the first ancestor whose
// configuration satisfies the predicate, or the nil handle.
func (cx *BuildContext) FindAncestor(pred func(Widget) bool) render.ElementID {
	found := render.NilElement
	cx.VisitAncestors(func(id render.ElementID, w Widget) bool {
		if w != nil && pred(w) {
			found = id
			return false
		}
		return true
	})
	return found
}

// ScheduleRebuild marks this element dirty for the next build pass.
// Calling it from within the element's own Build is how an element
// fails to converge, which the pass cap eventually reports.
func (cx *BuildContext) ScheduleRebuild() {
	cx.owner.ScheduleBuild(cx.id)
}

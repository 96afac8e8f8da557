// Package errors provides structured error handling for the Fern pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindBuild indicates a failure in the build phase.
	KindBuild
	// KindLayout indicates a failure in the layout phase.
	KindLayout
	// KindPaint indicates a failure in the paint phase.
	KindPaint
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindLayout:
		return "layout"
	case KindPaint:
		return "paint"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// BuildError represents a failure during the build phase.
type BuildError struct {
	// Op is the operation that failed (e.g., "core.BuildOwner.FlushBuild").
	Op string
	// Widget is the type name of the widget involved, if known.
	Widget string
	// Element is the numeric handle of the element being rebuilt, if known.
	Element uint64
	// Iterations is the number of build passes executed when the iteration
	// limit was exceeded; zero otherwise.
	Iterations int
	// Recovered is the panic value when the build panicked (nil otherwise).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Iterations > 0 {
		return fmt.Sprintf("%s: build did not stabilize after %d iterations", e.Op, e.Iterations)
	}
	if e.Recovered != nil {
		return fmt.Sprintf("%s: panic in %s build: %v", e.Op, e.Widget, e.Recovered)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsIterationLimit reports whether the error is a build convergence failure.
func (e *BuildError) IsIterationLimit() bool {
	return e.Iterations > 0
}

// LayoutErrorKind distinguishes layout failure modes.
type LayoutErrorKind int

const (
	// ConstraintViolation means a render object returned a size outside
	// the constraints it was given. Recoverable: the caller may substitute
	// the nearest valid size.
	ConstraintViolation LayoutErrorKind = iota
	// ArityMismatch means a render object's declared arity does not match
	// its actual child count. Always fatal: the tree is corrupt.
	ArityMismatch
)

func (k LayoutErrorKind) String() string {
	switch k {
	case ConstraintViolation:
		return "constraint violation"
	case ArityMismatch:
		return "arity mismatch"
	default:
		return "unknown"
	}
}

// LayoutError represents a failure during the layout phase.
type LayoutError struct {
	// Kind distinguishes the failure mode.
	Kind LayoutErrorKind
	// Element is the numeric handle of the offending element.
	Element uint64
	// Detail describes the violation (returned size vs constraints, or
	// declared arity vs child count).
	Detail string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout %s on element %d: %s", e.Kind, e.Element, e.Detail)
}

// Fatal reports whether the error must abort the layout phase.
// Constraint violations may be recovered by policy; arity mismatches never.
func (e *LayoutError) Fatal() bool {
	return e.Kind == ArityMismatch
}

// PaintError represents a failure during the paint phase.
type PaintError struct {
	// Element is the element whose paint failed.
	Element uint64
	// Child is the child whose layer could not be captured, if applicable.
	Child uint64
	// Detail describes the failure.
	Detail string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *PaintError) Error() string {
	if e.Child != 0 {
		return fmt.Sprintf("paint on element %d: %s (child %d)", e.Element, e.Detail, e.Child)
	}
	return fmt.Sprintf("paint on element %d: %s", e.Element, e.Detail)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked.
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the pipeline.
type ErrorHandler interface {
	// HandleBuildError is called when a widget build fails.
	HandleBuildError(err *BuildError)
	// HandleLayoutError is called when layout reports a violation.
	HandleLayoutError(err *LayoutError)
	// HandlePaintError is called when paint fails.
	HandlePaintError(err *PaintError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

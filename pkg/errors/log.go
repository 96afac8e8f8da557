package errors

import (
	"fmt"
	"os"
)

// LogHandler is an ErrorHandler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

// HandleBuildError logs a BuildError to stderr.
func (h *LogHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "[fern build error] %s\n", err.Error())
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandleLayoutError logs a LayoutError to stderr.
func (h *LogHandler) HandleLayoutError(err *LayoutError) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "[fern layout error] %s\n", err.Error())
}

// HandlePaintError logs a PaintError to stderr.
func (h *LogHandler) HandlePaintError(err *PaintError) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "[fern paint error] %s\n", err.Error())
}

// HandlePanic logs a PanicError to stderr.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "[fern panic] %s\n", err.Error())
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", err.StackTrace)
	}
}

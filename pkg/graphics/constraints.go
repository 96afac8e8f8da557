package graphics

import (
	"fmt"
	"math"
)

// Constraints is the min/max box passed down the tree during layout.
// Every size returned by a layout implementation must satisfy the
// constraints it was given.
type Constraints struct {
	MinWidth  float64
	MaxWidth  float64
	MinHeight float64
	MaxHeight float64
}

// Tight creates constraints that admit exactly one size.
func Tight(size Size) Constraints {
	return Constraints{
		MinWidth:  size.Width,
		MaxWidth:  size.Width,
		MinHeight: size.Height,
		MaxHeight: size.Height,
	}
}

// Loose creates constraints from zero up to the given size.
func Loose(size Size) Constraints {
	return Constraints{MaxWidth: size.Width, MaxHeight: size.Height}
}

// Unbounded creates constraints with no upper limit in either axis.
func Unbounded() Constraints {
	return Constraints{MaxWidth: math.Inf(1), MaxHeight: math.Inf(1)}
}

// IsTight returns true if the constraints admit exactly one size.
func (c Constraints) IsTight() bool {
	return floatEqual(c.MinWidth, c.MaxWidth) && floatEqual(c.MinHeight, c.MaxHeight)
}

// IsSatisfiedBy returns true if the size fits within the constraints.
func (c Constraints) IsSatisfiedBy(size Size) bool {
	return size.Width >= c.MinWidth-epsilon &&
		size.Width <= c.MaxWidth+epsilon &&
		size.Height >= c.MinHeight-epsilon &&
		size.Height <= c.MaxHeight+epsilon
}

// Constrain clamps the size to the nearest size satisfying the constraints.
func (c Constraints) Constrain(size Size) Size {
	return Size{
		Width:  math.Min(math.Max(size.Width, c.MinWidth), c.MaxWidth),
		Height: math.Min(math.Max(size.Height, c.MinHeight), c.MaxHeight),
	}
}

// Biggest returns the largest size satisfying the constraints.
func (c Constraints) Biggest() Size {
	return Size{Width: c.MaxWidth, Height: c.MaxHeight}
}

// Smallest returns the smallest size satisfying the constraints.
func (c Constraints) Smallest() Size {
	return Size{Width: c.MinWidth, Height: c.MinHeight}
}

// HasBoundedWidth returns true if MaxWidth is finite.
func (c Constraints) HasBoundedWidth() bool {
	return !math.IsInf(c.MaxWidth, 1)
}

// HasBoundedHeight returns true if MaxHeight is finite.
func (c Constraints) HasBoundedHeight() bool {
	return !math.IsInf(c.MaxHeight, 1)
}

// Loosen returns the constraints with the minimums removed.
func (c Constraints) Loosen() Constraints {
	return Constraints{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

func (c Constraints) String() string {
	return fmt.Sprintf("Constraints(w: %.1f..%.1f, h: %.1f..%.1f)",
		c.MinWidth, c.MaxWidth, c.MinHeight, c.MaxHeight)
}

package canvas

import (
	"iter"
	"math"
)

// Line is a screen-space segment spanning the whole viewport.
type Line struct {
	X0, Y0, X1, Y1 float64
	Vertical       bool
}

// VisibleGridLines walks outward from the cell described by b and yields
// every grid line that falls inside a width x height viewport. Lines at
// Left and Top are emitted by the backward walks, Right and Bottom by the
// forward walks, so the seam cell never produces a duplicate.
//
// When the seam cell lies off screen the walks start at the first lattice
// line inside the viewport instead of stepping through the hidden ones.
func VisibleGridLines(b Bounds, width, height, step float64) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		if step <= 0 {
			return
		}

		vertical := func(x float64) bool {
			return yield(Line{X0: x, Y0: 0, X1: x, Y1: height, Vertical: true})
		}
		horizontal := func(y float64) bool {
			return yield(Line{X0: 0, Y0: y, X1: width, Y1: y})
		}

		if !walkBack(b.Left, width, step, vertical) {
			return
		}
		if !walkForward(b.Right, width, step, vertical) {
			return
		}
		if !walkBack(b.Top, height, step, horizontal) {
			return
		}
		walkForward(b.Bottom, height, step, horizontal)
	}
}

// walkBack emits from, from-step, ... while > 0, skipping values >= limit.
func walkBack(from, limit, step float64, emit func(float64) bool) bool {
	if from >= limit {
		from -= (math.Floor((from-limit)/step) + 1) * step
	}
	for i := 0.0; ; i++ {
		v := from - i*step
		if v <= 0 {
			return true
		}
		if !emit(v) {
			return false
		}
	}
}

// walkForward emits from, from+step, ... while < limit, skipping values <= 0.
func walkForward(from, limit, step float64, emit func(float64) bool) bool {
	if from <= 0 {
		from += (math.Floor(-from/step) + 1) * step
	}
	for i := 0.0; ; i++ {
		v := from + i*step
		if v >= limit {
			return true
		}
		if !emit(v) {
			return false
		}
	}
}

// Lines returns the visible grid lines of this frame.
func (f Frame) Lines() iter.Seq[Line] {
	return VisibleGridLines(f.Bounds, f.Width, f.Height, f.ScaledCellSize())
}

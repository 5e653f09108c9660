// Package coords maps logical room coordinates to screen space.
//
// The room is a box of WorldWidth x WorldHeight x WorldDepth units. X runs left to
// right, Y is the height above the floor and Z is depth, with 0 at the back wall and
// increasing toward the viewer. Screen positions are measured in pixels from the left
// and from the bottom of the game layer. Camera panning is not applied here; the view
// layer offsets the whole world once.
package coords

import "math"

// WorldCoordinate is the logical position of an entity.
type WorldCoordinate struct {
	X float64 // [0, WorldWidth]
	Y float64 // [0, WorldHeight], 0 = standing on the floor
	Z float64 // [WallDepth, WorldDepth], 0 = back wall
}

// Grounded returns the coordinate projected onto the floor.
func (c WorldCoordinate) Grounded() WorldCoordinate {
	c.Y = 0
	return c
}

// IsFinite reports whether all components are finite numbers.
func (c WorldCoordinate) IsFinite() bool {
	return isFinite(c.X) && isFinite(c.Y) && isFinite(c.Z)
}

// ScreenPosition is a projected position. It is derived per call and never cached.
type ScreenPosition struct {
	X     float64 // px from the left of the world layer
	Y     float64 // px from the bottom of the game layer
	Scale float64 // perspective scale times world scale
}

// FloorDimensions describes the floor strip for the current viewport.
type FloorDimensions struct {
	ScreenWidth  float64
	ScreenHeight float64 // height of the floor strip in px
	WorldWidth   float64
	WorldDepth   float64
	WorldScale   float64 // uniform shrink for short viewports, never above 1
}

// Window reports the host window size in pixels.
type Window interface {
	Size() (width, height float64)
}

// StaticWindow is a Window with a fixed size.
type StaticWindow struct {
	Width, Height float64
}

// Size implements Window.
func (w StaticWindow) Size() (float64, float64) {
	return w.Width, w.Height
}

// WindowFunc adapts a function to the Window interface.
type WindowFunc func() (width, height float64)

// Size implements Window.
func (f WindowFunc) Size() (float64, float64) {
	return f()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// clamp restricts a value to a range. NaN collapses to min.
func clamp(x, min, max float64) float64 {
	if math.IsNaN(x) || x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// Package camera provides the horizontal pan of the room view.
//
// The room is wider than most viewports. The camera scrolls across it and is
// applied once as an offset of the whole drawn world; projections never see it.
package camera

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Camera pans a viewport across content wider than itself.
type Camera struct {
	// X is the content offset at the left edge of the viewport, px
	X float64

	// Viewport and content widths, px
	ViewportW, ContentW float64

	scroll *gween.Tween
}

// New creates a camera at the left edge of the content.
func New(viewportW, contentW float64) *Camera {
	return &Camera{ViewportW: viewportW, ContentW: contentW}
}

// MaxX returns the largest offset that keeps the viewport inside the content.
func (c *Camera) MaxX() float64 {
	return math.Max(0, c.ContentW-c.ViewportW)
}

// WorldToScreen converts a content x into a viewport x.
func (c *Camera) WorldToScreen(x float64) float64 {
	return x - c.X
}

// ScreenToWorld converts a viewport x into a content x.
func (c *Camera) ScreenToWorld(x float64) float64 {
	return x + c.X
}

// IsVisible reports whether the span [left, left+width] intersects the viewport.
func (c *Camera) IsVisible(left, width float64) bool {
	sx := c.WorldToScreen(left)
	return sx+width >= 0 && sx <= c.ViewportW
}

// Resize updates the viewport and content widths and re-clamps the offset.
func (c *Camera) Resize(viewportW, contentW float64) {
	if viewportW == c.ViewportW && contentW == c.ContentW {
		return
	}
	c.ViewportW = viewportW
	c.ContentW = contentW
	c.X = clamp(c.X, 0, c.MaxX())
}

// Pan moves the camera by dx px immediately, cancelling any scroll.
func (c *Camera) Pan(dx float64) {
	c.scroll = nil
	c.X = clamp(c.X+dx, 0, c.MaxX())
}

// ScrollTo animates the camera to offset x over duration seconds.
func (c *Camera) ScrollTo(x float64, duration float32, fn ease.TweenFunc) {
	target := clamp(x, 0, c.MaxX())
	if duration <= 0 {
		c.scroll = nil
		c.X = target
		return
	}
	c.scroll = gween.New(float32(c.X), float32(target), duration, fn)
}

// Scrolling reports whether a scroll animation is running.
func (c *Camera) Scrolling() bool {
	return c.scroll != nil
}

// Update advances the scroll animation by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.scroll == nil {
		return
	}
	val, done := c.scroll.Update(dt)
	c.X = clamp(float64(val), 0, c.MaxX())
	if done {
		c.scroll = nil
	}
}

// Reset returns the camera to the left edge.
func (c *Camera) Reset() {
	c.scroll = nil
	c.X = 0
}

func clamp(x, min, max float64) float64 {
	if math.IsNaN(x) || x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

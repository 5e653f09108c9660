// Package shadow lays out the ground shadow ellipse under an entity.
package shadow

import (
	"math"

	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/coords"
)

// Params holds shadow geometry.
type Params struct {
	BaseWidth    float64 // px at scale 1
	ScaleFactor  float64 // shadows render a little smaller than their caster
	AspectRatio  float64 // height = width * AspectRatio
	MinSizeRatio float64 // size floor for high entities, relative to ground level
	MaxHeight    float64 // height above ground where shrinking stops
}

// DefaultParams returns the stock shadow geometry.
func DefaultParams() Params {
	return Params{
		BaseWidth:    230,
		ScaleFactor:  0.8,
		AspectRatio:  0.32,
		MinSizeRatio: 0.3,
		MaxHeight:    200,
	}
}

// ParamsFromConfig reads shadow geometry from the configuration.
func ParamsFromConfig(cfg config.ShadowConfig) Params {
	return Params{
		BaseWidth:    cfg.BaseWidth,
		ScaleFactor:  cfg.ScaleFactor,
		AspectRatio:  cfg.AspectRatio,
		MinSizeRatio: cfg.MinSizeRatio,
		MaxHeight:    cfg.MaxHeight,
	}
}

// Layout is the shadow rectangle in px, bottom-anchored like ScreenPosition.
type Layout struct {
	Left, Bottom  float64
	Width, Height float64
}

// CenterX returns the horizontal center of the ellipse.
func (l Layout) CenterX() float64 {
	return l.Left + l.Width/2
}

// CenterY returns the vertical center of the ellipse.
func (l Layout) CenterY() float64 {
	return l.Bottom + l.Height/2
}

// ComputeLayout lays out a shadow with the default parameters.
func ComputeLayout(screen coords.ScreenPosition, yHeight float64) Layout {
	return DefaultParams().Compute(screen, yHeight)
}

// HeightFactor returns how much the shadow shrinks at yHeight above ground:
// 1 on the floor, falling linearly to MinSizeRatio at MaxHeight and staying there.
func (p Params) HeightFactor(yHeight float64) float64 {
	if p.MaxHeight <= 0 || math.IsNaN(yHeight) {
		return 1
	}
	ratio := math.Min(1, math.Max(0, yHeight)/p.MaxHeight)
	return 1 - (1-p.MinSizeRatio)*ratio
}

// Compute lays out the shadow for a projected position.
//
// The ellipse is centered on screen.Y rather than resting on it, so a grounded
// entity's baseline meets the middle of its shadow.
func (p Params) Compute(screen coords.ScreenPosition, yHeight float64) Layout {
	scale := finiteOrZero(screen.Scale)
	if scale < 0 {
		scale = 0
	}
	x := finiteOrZero(screen.X)
	y := finiteOrZero(screen.Y)

	width := p.BaseWidth * scale * p.ScaleFactor * p.HeightFactor(yHeight)
	height := width * p.AspectRatio

	return Layout{
		Left:   math.Round(x) - math.Round(width/2),
		Bottom: y - height/2,
		Width:  width,
		Height: height,
	}
}

// ForEntity projects an entity onto the floor and lays out its shadow, shrunk
// for its height above ground.
func (p Params) ForEntity(proj coords.Projection, c coords.WorldCoordinate) Layout {
	return p.Compute(proj.CatToScreen(c.Grounded()), c.Y)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

package coords

import (
	"math"

	"github.com/pthm-cable/catroom/config"
)

// Projection is an immutable snapshot of the viewport used to project many
// coordinates consistently, e.g. for a whole frame. Obtain one with
// System.Projection.
type Projection struct {
	floor FloorDimensions
	cfg   *config.Config
}

// NewProjection builds a projection for a viewport of the given size without a System.
func NewProjection(cfg *config.Config, viewportWidth, viewportHeight float64) Projection {
	return Projection{
		floor: floorDimensions(cfg, viewportWidth, viewportHeight),
		cfg:   cfg,
	}
}

func floorDimensions(cfg *config.Config, viewportWidth, viewportHeight float64) FloorDimensions {
	return FloorDimensions{
		ScreenWidth:  viewportWidth,
		ScreenHeight: viewportHeight * cfg.Floor.Ratio,
		WorldWidth:   cfg.World.Width,
		WorldDepth:   cfg.World.Depth,
		WorldScale:   math.Min(1, viewportHeight/cfg.Perspective.MinWorldHeight),
	}
}

// Floor returns the floor dimensions of this snapshot.
func (p Projection) Floor() FloorDimensions {
	return p.floor
}

// DepthRatio normalizes z into [0, 1] over the walkable depth range.
// 0 is the back wall, 1 the front edge.
func (p Projection) DepthRatio(z float64) float64 {
	d := p.cfg.Derived
	return (clamp(z, d.MinZ, d.MaxZ) - d.MinZ) / d.DepthSpan
}

// PerspectiveScale returns the depth scale at z, before world scale is applied.
// The curve is linear so that scale never decreases as z grows.
func (p Projection) PerspectiveScale(z float64) float64 {
	return p.cfg.Perspective.MinScale + p.cfg.Derived.ScaleSpan*p.DepthRatio(z)
}

// CatToScreen projects a world coordinate onto the screen.
//
// A grounded entity (Y == 0) always lands inside the floor strip. Airborne entities
// may rise above the strip's nominal top. X is independent of depth and camera.
func (p Projection) CatToScreen(c WorldCoordinate) ScreenPosition {
	c = p.sanitizeUnbounded(c)
	floor := p.floor

	zNormalized := p.DepthRatio(c.Z)
	scale := p.PerspectiveScale(c.Z) * floor.WorldScale
	screenX := c.X * floor.WorldScale

	heightRatio := math.Max(0, c.Y) / p.cfg.World.Height
	jumpHeight := heightRatio * floor.ScreenHeight * p.cfg.Perspective.JumpHeightRatio

	// Back wall sits at the top of the strip, the front edge at its bottom
	floorDepthOffset := floor.ScreenHeight * (1 - zNormalized)

	bottom := floorDepthOffset + jumpHeight
	if c.Y == 0 {
		bottom = clamp(bottom, 0, floor.ScreenHeight)
	} else {
		bottom = math.Max(0, bottom)
	}

	return ScreenPosition{X: screenX, Y: bottom, Scale: scale}
}

// WallToScreen projects a wall-mounted item. It shares the perspective curve with
// CatToScreen but stacks Y above the floor strip using world scale only.
func (p Projection) WallToScreen(c WorldCoordinate) ScreenPosition {
	c = p.sanitizeUnbounded(c)
	floor := p.floor
	return ScreenPosition{
		X:     c.X * floor.WorldScale,
		Y:     floor.ScreenHeight + c.Y*floor.WorldScale,
		Scale: p.PerspectiveScale(c.Z) * floor.WorldScale,
	}
}

// ShadowPosition projects the entity onto the floor and returns 80% of that scale.
//
// Deprecated: project with CatToScreen(c.Grounded()) and lay the shadow out with
// the shadow package.
func (p Projection) ShadowPosition(c WorldCoordinate) ScreenPosition {
	pos := p.CatToScreen(c.Grounded())
	pos.Scale *= p.cfg.Perspective.LegacyShadowScale
	return pos
}

// ScreenToCat maps a screen point back to the floor, assuming a grounded entity.
// It is an approximation for hit testing, not an exact inverse.
func (p Projection) ScreenToCat(screenX, screenY float64) WorldCoordinate {
	floor := p.floor
	d := p.cfg.Derived

	ratio := 1.0
	if floor.ScreenHeight > 0 {
		ratio = 1 - screenY/floor.ScreenHeight
	}
	return p.ClampToWorldBounds(WorldCoordinate{
		X: p.unscaleX(screenX),
		Y: 0,
		Z: d.MinZ + clamp(ratio, 0, 1)*d.DepthSpan,
	})
}

// ScreenToCatAtDepth maps a screen point back to the world at a known depth,
// recovering the height above the floor from the vertical offset.
func (p Projection) ScreenToCatAtDepth(screenX, screenY, z float64) WorldCoordinate {
	floor := p.floor
	floorDepthOffset := floor.ScreenHeight * (1 - p.DepthRatio(z))

	y := 0.0
	jumpRange := floor.ScreenHeight * p.cfg.Perspective.JumpHeightRatio
	if lift := screenY - floorDepthOffset; lift > 0 && jumpRange > 0 {
		y = lift / jumpRange * p.cfg.World.Height
	}
	return p.ClampToWorldBounds(WorldCoordinate{X: p.unscaleX(screenX), Y: y, Z: z})
}

// ZIndex returns the draw order of furniture at depth z. Values are
// non-negative so floor decoration (negative band) always sorts beneath.
func (p Projection) ZIndex(z float64) int {
	return int(math.Round(p.DepthRatio(z) * float64(p.cfg.Floor.FurnitureZIndexRange)))
}

func (p Projection) unscaleX(screenX float64) float64 {
	if p.floor.WorldScale <= 0 {
		return 0
	}
	return screenX / p.floor.WorldScale
}

// sanitizeUnbounded replaces non-finite X and Y with their nearest bound. Finite
// values pass through unclamped; CatToScreen only bounds depth.
func (p Projection) sanitizeUnbounded(c WorldCoordinate) WorldCoordinate {
	if !isFinite(c.X) {
		c.X = clamp(c.X, 0, p.cfg.World.Width)
	}
	if !isFinite(c.Y) {
		c.Y = clamp(c.Y, 0, p.cfg.World.Height)
	}
	return c
}

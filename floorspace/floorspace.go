// Package floorspace lays out floor-attached decoration such as rugs.
//
// Unlike furniture, floor decoration does not use the perspective curve: a rug
// keeps its size wherever it lies and only shrinks with the uniform world scale.
// Logical footprints (world units) drive overlap checks; visual sizes (px) drive
// rendering.
package floorspace

import (
	"math"

	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/coords"
)

// Layer separates items that may share floor space. Items only collide with
// items on the same layer.
type Layer uint8

const (
	LayerFurniture Layer = iota
	LayerRug
	LayerShadow
)

func (l Layer) String() string {
	switch l {
	case LayerFurniture:
		return "furniture"
	case LayerRug:
		return "rug"
	case LayerShadow:
		return "shadow"
	default:
		return "unknown"
	}
}

// Config describes a floor item.
type Config struct {
	CenterX, CenterZ float64 // world units
	LogicalWidth     float64 // footprint along x, world units
	LogicalDepth     float64 // footprint along z, world units
	VisualWidth      float64 // rendered width at world scale 1, px
	VisualHeight     float64 // rendered height at world scale 1, px
	Layer            Layer
}

// Layout is the on-screen box of a floor item.
type Layout struct {
	ScreenX      float64 // left edge, px
	ScreenY      float64 // bottom edge, px from the bottom of the game layer
	ScreenWidth  float64
	ScreenHeight float64
	FloorScale   float64 // always the world scale, never perspective
	DepthRatio   float64 // 0 at the back wall, 1 at the front
	ZIndex       int     // negative band, beneath all furniture
}

// Footprint is an axis-aligned box on the floor in world units.
type Footprint struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

// Overlaps reports whether two footprints share area. Touching edges do not overlap.
func (f Footprint) Overlaps(o Footprint) bool {
	return f.MinX < o.MaxX && o.MinX < f.MaxX &&
		f.MinZ < o.MaxZ && o.MinZ < f.MaxZ
}

// Contains reports whether the floor point (x, z) lies inside the footprint.
func (f Footprint) Contains(x, z float64) bool {
	return x >= f.MinX && x <= f.MaxX && z >= f.MinZ && z <= f.MaxZ
}

// Expand grows the footprint by margin on every side.
func (f Footprint) Expand(margin float64) Footprint {
	return Footprint{
		MinX: f.MinX - margin,
		MaxX: f.MaxX + margin,
		MinZ: f.MinZ - margin,
		MaxZ: f.MaxZ + margin,
	}
}

// Manager computes floor layouts against a coordinate system.
type Manager struct {
	sys *coords.System
	cfg *config.Config
}

// NewManager creates a floor space manager for sys.
func NewManager(sys *coords.System) *Manager {
	return &Manager{sys: sys, cfg: sys.Config()}
}

// CalculateFloorLayout lays out c with the current viewport.
func (m *Manager) CalculateFloorLayout(c Config) Layout {
	return m.LayoutWith(m.sys.Projection(), c)
}

// LayoutWith lays out c against a projection snapshot.
func (m *Manager) LayoutWith(proj coords.Projection, c Config) Layout {
	floor := proj.Floor()
	floorScale := floor.WorldScale

	width := math.Max(0, finite(c.VisualWidth)) * floorScale
	height := math.Max(0, finite(c.VisualHeight)) * floorScale

	ratio := m.DepthRatio(c.CenterZ)
	centerX := finite(c.CenterX) * floorScale
	centerY := floor.ScreenHeight * (1 - ratio)

	return Layout{
		ScreenX:      centerX - width/2,
		ScreenY:      centerY - height/2,
		ScreenWidth:  width,
		ScreenHeight: height,
		FloorScale:   floorScale,
		DepthRatio:   ratio,
		ZIndex:       m.FloorZIndex(ratio),
	}
}

// DepthRatio normalizes z over [WallDepth, WorldDepth].
func (m *Manager) DepthRatio(z float64) float64 {
	w := m.cfg.World
	if math.IsNaN(z) {
		return 0
	}
	return clamp01((z - w.WallDepth) / (w.Depth - w.WallDepth))
}

// CalculateLogicalFootprint returns the world-space box of c.
func (m *Manager) CalculateLogicalFootprint(c Config) Footprint {
	return FootprintOf(c)
}

// FootprintOf returns the world-space box of c, centered on (CenterX, CenterZ).
func FootprintOf(c Config) Footprint {
	halfW := math.Max(0, c.LogicalWidth) / 2
	halfD := math.Max(0, c.LogicalDepth) / 2
	return Footprint{
		MinX: c.CenterX - halfW,
		MaxX: c.CenterX + halfW,
		MinZ: c.CenterZ - halfD,
		MaxZ: c.CenterZ + halfD,
	}
}

// CheckFloorOverlap reports whether two items on the same layer overlap.
func (m *Manager) CheckFloorOverlap(a, b Config) bool {
	return CheckOverlap(a, b)
}

// CheckOverlap reports whether two items on the same layer overlap.
func CheckOverlap(a, b Config) bool {
	if a.Layer != b.Layer {
		return false
	}
	return FootprintOf(a).Overlaps(FootprintOf(b))
}

// FloorZIndex maps a depth ratio into the floor band, [-1000, -900] by default.
// Nearer items sort above farther ones within the band.
func (m *Manager) FloorZIndex(depthRatio float64) int {
	f := m.cfg.Floor
	if math.IsNaN(depthRatio) {
		depthRatio = 0
	}
	return int(math.Round(float64(f.ZIndexBase) + clamp01(depthRatio)*float64(f.ZIndexRange)))
}

// CreateRugConfig builds a rug at (x, z). The visual rug is smaller than its
// footprint so furniture can sit on the footprint edge.
func (m *Manager) CreateRugConfig(x, z, width, depth float64) Config {
	ratio := m.cfg.Rug.VisualRatio
	return Config{
		CenterX:      x,
		CenterZ:      z,
		LogicalWidth: width,
		LogicalDepth: depth,
		VisualWidth:  width * ratio,
		VisualHeight: depth * ratio,
		Layer:        LayerRug,
	}
}

// CreateShadowConfig builds a floor shadow footprint of the given width.
func (m *Manager) CreateShadowConfig(x, z, shadowWidth float64) Config {
	depth := shadowWidth * m.cfg.Shadow.FootprintDepthRatio
	return Config{
		CenterX:      x,
		CenterZ:      z,
		LogicalWidth: shadowWidth,
		LogicalDepth: depth,
		VisualWidth:  shadowWidth,
		VisualHeight: depth,
		Layer:        LayerShadow,
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

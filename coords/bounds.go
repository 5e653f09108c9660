package coords

// ClampToWorldBounds clamps each component into the room:
// [0, WorldWidth] x [0, WorldHeight] x [WallDepth, WorldDepth-FloorMargin].
// NaN collapses to the lower bound and infinities to the matching bound, so the
// result is always finite.
func (p Projection) ClampToWorldBounds(c WorldCoordinate) WorldCoordinate {
	w := p.cfg.World
	d := p.cfg.Derived
	return WorldCoordinate{
		X: clamp(c.X, 0, w.Width),
		Y: clamp(c.Y, 0, w.Height),
		Z: clamp(c.Z, d.MinZ, d.MaxZ),
	}
}

// IsWithinBounds reports whether c lies inside the clamp ranges. Non-finite
// components are never within bounds.
func (p Projection) IsWithinBounds(c WorldCoordinate) bool {
	if !c.IsFinite() {
		return false
	}
	w := p.cfg.World
	d := p.cfg.Derived
	return c.X >= 0 && c.X <= w.Width &&
		c.Y >= 0 && c.Y <= w.Height &&
		c.Z >= d.MinZ && c.Z <= d.MaxZ
}

// SanitizeCoordinate replaces each non-finite component of next with the one from
// prev, then clamps. Use it for untrusted input such as a debug panel.
func (p Projection) SanitizeCoordinate(next, prev WorldCoordinate) WorldCoordinate {
	if !isFinite(next.X) {
		next.X = prev.X
	}
	if !isFinite(next.Y) {
		next.Y = prev.Y
	}
	if !isFinite(next.Z) {
		next.Z = prev.Z
	}
	return p.ClampToWorldBounds(next)
}

package floorspace

import (
	"math"
	"testing"

	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/coords"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func newTestManager(t *testing.T, winW, winH float64) (*Manager, *coords.System) {
	t.Helper()
	sys := coords.New(config.Default(), coords.StaticWindow{Width: winW, Height: winH})
	return NewManager(sys), sys
}

func TestCalculateFloorLayout(t *testing.T) {
	m, _ := newTestManager(t, 1280, 800)

	rug := m.CreateRugConfig(700, 600, 400, 200)
	l := m.CalculateFloorLayout(rug)

	if !approxEqual(l.ScreenWidth, 320, 1e-9) || !approxEqual(l.ScreenHeight, 160, 1e-9) {
		t.Errorf("size = %vx%v, want 320x160", l.ScreenWidth, l.ScreenHeight)
	}
	if !approxEqual(l.ScreenX, 540, 1e-9) {
		t.Errorf("screen x = %v, want 540", l.ScreenX)
	}
	if !approxEqual(l.ScreenY, 80, 1e-9) {
		t.Errorf("screen y = %v, want 80", l.ScreenY)
	}
	if l.FloorScale != 1 {
		t.Errorf("floor scale = %v, want 1", l.FloorScale)
	}
	if l.ZIndex != -950 {
		t.Errorf("z-index = %d, want -950", l.ZIndex)
	}
}

func TestCalculateFloorLayoutShortViewport(t *testing.T) {
	m, _ := newTestManager(t, 1280, 200)

	l := m.CalculateFloorLayout(m.CreateRugConfig(700, 600, 400, 200))
	if !approxEqual(l.FloorScale, 0.5, 1e-9) {
		t.Fatalf("floor scale = %v, want 0.5", l.FloorScale)
	}
	if !approxEqual(l.ScreenWidth, 160, 1e-9) || !approxEqual(l.ScreenHeight, 80, 1e-9) {
		t.Errorf("size = %vx%v, want 160x80", l.ScreenWidth, l.ScreenHeight)
	}
	if !approxEqual(l.ScreenX, 270, 1e-9) || !approxEqual(l.ScreenY, 0, 1e-9) {
		t.Errorf("anchor = (%v, %v), want (270, 0)", l.ScreenX, l.ScreenY)
	}
}

func TestRugScaleIgnoresDepth(t *testing.T) {
	m, sys := newTestManager(t, 1280, 800)
	floor := sys.FloorDimensions()

	near := m.CalculateFloorLayout(m.CreateRugConfig(500, 1100, 300, 200))
	far := m.CalculateFloorLayout(m.CreateRugConfig(500, 100, 300, 200))

	if near.FloorScale != floor.WorldScale || far.FloorScale != floor.WorldScale {
		t.Errorf("floor scales = (%v, %v), want world scale %v", near.FloorScale, far.FloorScale, floor.WorldScale)
	}
	if near.ScreenWidth != far.ScreenWidth {
		t.Errorf("rug width changed with depth: %v vs %v", near.ScreenWidth, far.ScreenWidth)
	}

	// Furniture at the same spots does scale with depth
	nearCat := sys.CatToScreen(coords.WorldCoordinate{X: 500, Y: 0, Z: 1100})
	farCat := sys.CatToScreen(coords.WorldCoordinate{X: 500, Y: 0, Z: 100})
	if nearCat.Scale <= farCat.Scale {
		t.Errorf("furniture scale should grow with depth: near %v, far %v", nearCat.Scale, farCat.Scale)
	}
}

func TestFloorLayoutMatchesCatBaseline(t *testing.T) {
	m, sys := newTestManager(t, 1280, 800)

	for _, z := range []float64{0, 300, 600, 1200} {
		l := m.CalculateFloorLayout(m.CreateRugConfig(400, z, 200, 100))
		cat := sys.CatToScreen(coords.WorldCoordinate{X: 400, Y: 0, Z: z})
		centerY := l.ScreenY + l.ScreenHeight/2
		if !approxEqual(centerY, cat.Y, 1e-9) {
			t.Errorf("z=%v: rug center y %v, cat baseline %v", z, centerY, cat.Y)
		}
	}
}

func TestCalculateLogicalFootprint(t *testing.T) {
	m, _ := newTestManager(t, 1280, 800)

	fp := m.CalculateLogicalFootprint(Config{CenterX: 500, CenterZ: 400, LogicalWidth: 200, LogicalDepth: 100})
	want := Footprint{MinX: 400, MaxX: 600, MinZ: 350, MaxZ: 450}
	if fp != want {
		t.Errorf("footprint = %+v, want %+v", fp, want)
	}
	if !fp.Contains(500, 400) || fp.Contains(601, 400) {
		t.Error("Contains disagrees with bounds")
	}
}

func TestCheckFloorOverlap(t *testing.T) {
	m, _ := newTestManager(t, 1280, 800)

	rugA := m.CreateRugConfig(500, 500, 200, 200)
	tests := []struct {
		name string
		b    Config
		want bool
	}{
		{"overlapping rug", m.CreateRugConfig(600, 550, 200, 200), true},
		{"touching edge", m.CreateRugConfig(700, 500, 200, 200), false},
		{"disjoint in z", m.CreateRugConfig(500, 800, 200, 200), false},
		{"contained", m.CreateRugConfig(500, 500, 50, 50), true},
		{"different layer", m.CreateShadowConfig(500, 500, 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.CheckFloorOverlap(rugA, tt.b); got != tt.want {
				t.Errorf("overlap = %v, want %v", got, tt.want)
			}
			if got := m.CheckFloorOverlap(tt.b, rugA); got != tt.want {
				t.Errorf("overlap not symmetric")
			}
		})
	}
}

func TestFloorZIndex(t *testing.T) {
	m, sys := newTestManager(t, 1280, 800)
	proj := sys.Projection()

	tests := []struct {
		ratio float64
		want  int
	}{
		{0, -1000},
		{0.5, -950},
		{1, -900},
		{-3, -1000},
		{7, -900},
		{math.NaN(), -1000},
	}
	for _, tt := range tests {
		if got := m.FloorZIndex(tt.ratio); got != tt.want {
			t.Errorf("FloorZIndex(%v) = %d, want %d", tt.ratio, got, tt.want)
		}
	}

	// Every floor item sorts beneath every piece of furniture
	if m.FloorZIndex(1) >= proj.ZIndex(0) {
		t.Errorf("front rug %d not beneath back furniture %d", m.FloorZIndex(1), proj.ZIndex(0))
	}
}

func TestFactories(t *testing.T) {
	m, _ := newTestManager(t, 1280, 800)

	rug := m.CreateRugConfig(100, 200, 300, 150)
	if !approxEqual(rug.VisualWidth, 240, 1e-9) || !approxEqual(rug.VisualHeight, 120, 1e-9) {
		t.Errorf("rug visual = %vx%v, want 240x120", rug.VisualWidth, rug.VisualHeight)
	}
	if rug.Layer != LayerRug {
		t.Errorf("rug layer = %v", rug.Layer)
	}

	sh := m.CreateShadowConfig(100, 200, 184)
	if !approxEqual(sh.LogicalDepth, 184*0.16, 1e-9) {
		t.Errorf("shadow depth = %v, want %v", sh.LogicalDepth, 184*0.16)
	}
	if sh.Layer != LayerShadow || sh.Layer.String() != "shadow" {
		t.Errorf("shadow layer = %v", sh.Layer)
	}
}

func TestLayoutNonFinite(t *testing.T) {
	m, _ := newTestManager(t, 1280, 800)

	l := m.CalculateFloorLayout(Config{CenterX: math.NaN(), CenterZ: math.Inf(1), VisualWidth: math.Inf(1), VisualHeight: -5})
	for _, v := range []float64{l.ScreenX, l.ScreenY, l.ScreenWidth, l.ScreenHeight, l.DepthRatio} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("layout %+v has non-finite component", l)
		}
	}
}

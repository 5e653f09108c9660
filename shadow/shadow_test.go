package shadow

import (
	"math"
	"testing"

	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/coords"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestComputeLayoutGroundLevel(t *testing.T) {
	l := ComputeLayout(coords.ScreenPosition{X: 100, Y: 50, Scale: 1.0}, 0)

	if !approxEqual(l.Width, 184, 1e-9) {
		t.Errorf("width = %v, want 184", l.Width)
	}
	if !approxEqual(l.Height, 58.88, 1e-9) {
		t.Errorf("height = %v, want 58.88", l.Height)
	}
	if l.Left != 100-92 {
		t.Errorf("left = %v, want 8", l.Left)
	}
	if !approxEqual(l.CenterY(), 50, 1e-9) {
		t.Errorf("center y = %v, want 50", l.CenterY())
	}
}

func TestHeightShrinkFloor(t *testing.T) {
	screen := coords.ScreenPosition{X: 400, Y: 120, Scale: 1.3}
	ground := ComputeLayout(screen, 0)

	prev := ground.Width
	for _, y := range []float64{10, 50, 100, 150, 200, 400, 1000, 1e9} {
		l := ComputeLayout(screen, y)
		if l.Width < 0.3*ground.Width-1e-9 {
			t.Errorf("y=%v: width %v below 30%% of %v", y, l.Width, ground.Width)
		}
		if l.Width > prev+1e-9 {
			t.Errorf("y=%v: width grew from %v to %v", y, prev, l.Width)
		}
		if !approxEqual(l.Height, l.Width*0.32, 1e-9) {
			t.Errorf("y=%v: aspect ratio broken, %v x %v", y, l.Width, l.Height)
		}
		prev = l.Width
	}

	high := ComputeLayout(screen, 1000)
	if !approxEqual(high.Width, 0.3*ground.Width, 1e-9) {
		t.Errorf("width at 1000 = %v, want exactly 30%% of ground (%v)", high.Width, 0.3*ground.Width)
	}
}

func TestNegativeHeightIsGround(t *testing.T) {
	screen := coords.ScreenPosition{X: 10, Y: 10, Scale: 0.9}
	if ComputeLayout(screen, -40) != ComputeLayout(screen, 0) {
		t.Error("negative height should match ground level")
	}
	if ComputeLayout(screen, math.NaN()) != ComputeLayout(screen, 0) {
		t.Error("NaN height should match ground level")
	}
}

func TestHorizontalCentering(t *testing.T) {
	tests := []struct {
		x, scale float64
		wantLeft float64
	}{
		{100.4, 1.0, 100 - 92},
		{100.6, 1.0, 101 - 92},
		{0, 0.5, 0 - 46},
		{250, 0.4, 250 - 37}, // width 73.6
	}

	for _, tt := range tests {
		l := ComputeLayout(coords.ScreenPosition{X: tt.x, Y: 0, Scale: tt.scale}, 0)
		if l.Left != tt.wantLeft {
			t.Errorf("x=%v scale=%v: left = %v, want %v", tt.x, tt.scale, l.Left, tt.wantLeft)
		}
	}
}

func TestNonFiniteScreen(t *testing.T) {
	l := ComputeLayout(coords.ScreenPosition{X: math.NaN(), Y: math.Inf(1), Scale: math.NaN()}, 0)
	for _, v := range []float64{l.Left, l.Bottom, l.Width, l.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("layout %+v has non-finite component", l)
		}
	}
}

func TestParamsFromConfigMatchesDefaults(t *testing.T) {
	got := ParamsFromConfig(config.Default().Shadow)
	if got != DefaultParams() {
		t.Errorf("config params = %+v, want %+v", got, DefaultParams())
	}
}

func TestBaselineAlignsWithShadowCenter(t *testing.T) {
	cfg := config.Default()
	sys := coords.New(cfg, coords.StaticWindow{Width: 1280, Height: 800})
	params := ParamsFromConfig(cfg.Shadow)

	for z := 0.0; z <= 1200; z += 25 {
		pos := sys.CatToScreen(coords.WorldCoordinate{X: 560, Y: 0, Z: z})
		l := params.Compute(pos, 0)
		if math.Abs(pos.Y-l.CenterY()) > 1 {
			t.Errorf("z=%v: baseline %v vs shadow center %v", z, pos.Y, l.CenterY())
		}
	}
}

func TestForEntity(t *testing.T) {
	cfg := config.Default()
	sys := coords.New(cfg, coords.StaticWindow{Width: 1280, Height: 800})
	proj := sys.Projection()
	params := ParamsFromConfig(cfg.Shadow)

	cat := coords.WorldCoordinate{X: 300, Y: 100, Z: 700}
	got := params.ForEntity(proj, cat)
	ground := proj.CatToScreen(cat.Grounded())
	want := params.Compute(ground, 100)

	if got != want {
		t.Errorf("ForEntity = %+v, want %+v", got, want)
	}
	// The shadow stays on the floor while the cat is in the air
	if !approxEqual(got.CenterY(), ground.Y, 1e-9) {
		t.Errorf("shadow center y = %v, want floor y %v", got.CenterY(), ground.Y)
	}
}

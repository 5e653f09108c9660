// Package audit samples the room projection across its depth range and reports
// every place where the rendering guarantees do not hold.
package audit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/coords"
	"github.com/pthm-cable/catroom/shadow"
)

// Check names.
const (
	CheckScaleMonotonic  = "scale_monotonic"
	CheckYNonIncreasing  = "y_non_increasing"
	CheckGroundedInStrip = "grounded_in_strip"
	CheckXInvariance     = "x_invariance"
	CheckShadowAlignment = "shadow_alignment"
	CheckClampSafety     = "clamp_safety"
)

const epsilon = 1e-9

// Params controls an audit run.
type Params struct {
	Samples            int     // depth samples, at least 2
	AlignmentTolerance float64 // px
	Shadow             shadow.Params
}

// ParamsFromConfig builds Params from the audit and shadow sections.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Samples:            cfg.Audit.Samples,
		AlignmentTolerance: cfg.Audit.AlignmentTolerance,
		Shadow:             shadow.ParamsFromConfig(cfg.Shadow),
	}
}

// Sample is the projection of a grounded entity at one depth.
type Sample struct {
	Z              float64 `csv:"z"`
	Scale          float64 `csv:"scale"`
	ScreenY        float64 `csv:"screen_y"`
	ShadowWidth    float64 `csv:"shadow_width"`
	ShadowHeight   float64 `csv:"shadow_height"`
	ShadowBottom   float64 `csv:"shadow_bottom"`
	AlignmentError float64 `csv:"alignment_error"`
}

// Violation is a single failed check.
type Violation struct {
	Check  string
	Z      float64
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s at z=%.2f: %s", v.Check, v.Z, v.Detail)
}

// Report is the outcome of a run.
type Report struct {
	Floor      coords.FloorDimensions
	Samples    []Sample
	Violations []Violation

	MeanAlignmentError float64
	MaxAlignmentError  float64
	MeanScale          float64
	ScaleStdDev        float64
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	return len(r.Violations) == 0
}

// Run audits sys with its current viewport. The camera check pans a scratch
// system sized to the same viewport, so sys and its subscribers are untouched.
func Run(sys *coords.System, p Params) Report {
	if p.Samples < 2 {
		p.Samples = 2
	}
	cfg := sys.Config()
	proj := sys.Projection()

	r := Report{Floor: proj.Floor()}
	a := &auditor{proj: proj, params: p, report: &r}

	zs := floats.Span(make([]float64, p.Samples), cfg.Derived.MinZ, cfg.Derived.MaxZ)
	screens := make([]coords.ScreenPosition, len(zs))
	for i, z := range zs {
		screens[i] = proj.CatToScreen(coords.WorldCoordinate{X: cfg.World.Width / 2, Z: z})
		r.Samples = append(r.Samples, a.sample(z, screens[i]))
	}

	a.checkCurves(zs, screens)
	a.checkXInvariance(sys, zs, cfg.World.Width)
	a.checkClampSafety(sys)
	r.summarize()
	return r
}

type auditor struct {
	proj   coords.Projection
	params Params
	report *Report
}

func (a *auditor) fail(check string, z float64, format string, args ...any) {
	a.report.Violations = append(a.report.Violations, Violation{
		Check:  check,
		Z:      z,
		Detail: fmt.Sprintf(format, args...),
	})
}

func (a *auditor) sample(z float64, screen coords.ScreenPosition) Sample {
	sh := a.params.Shadow.Compute(screen, 0)
	alignment := math.Max(math.Abs(sh.CenterX()-screen.X), math.Abs(sh.CenterY()-screen.Y))
	if alignment > a.params.AlignmentTolerance {
		a.fail(CheckShadowAlignment, z, "shadow center off by %.3fpx", alignment)
	}
	return Sample{
		Z:              z,
		Scale:          screen.Scale,
		ScreenY:        screen.Y,
		ShadowWidth:    sh.Width,
		ShadowHeight:   sh.Height,
		ShadowBottom:   sh.Bottom,
		AlignmentError: alignment,
	}
}

func (a *auditor) checkCurves(zs []float64, screens []coords.ScreenPosition) {
	stripTop := a.report.Floor.ScreenHeight
	for i, s := range screens {
		if s.Y < 0 || s.Y > stripTop+epsilon {
			a.fail(CheckGroundedInStrip, zs[i], "y=%.3f outside [0, %.3f]", s.Y, stripTop)
		}
		if i == 0 {
			continue
		}
		prev := screens[i-1]
		if s.Scale < prev.Scale-epsilon {
			a.fail(CheckScaleMonotonic, zs[i], "scale %.4f < %.4f", s.Scale, prev.Scale)
		}
		if s.Y > prev.Y+epsilon {
			a.fail(CheckYNonIncreasing, zs[i], "y %.3f > %.3f", s.Y, prev.Y)
		}
	}
}

func (a *auditor) checkXInvariance(sys *coords.System, zs []float64, worldWidth float64) {
	xs := floats.Span(make([]float64, 5), 0, worldWidth)
	scale := a.report.Floor.WorldScale

	check := func(proj coords.Projection, label string) {
		for _, x := range xs {
			want := x * scale
			for _, z := range zs {
				got := proj.CatToScreen(coords.WorldCoordinate{X: x, Z: z}).X
				if math.Abs(got-want) > epsilon {
					a.fail(CheckXInvariance, z, "%s: x=%.1f maps to %.3f, want %.3f", label, x, got, want)
				}
			}
		}
	}
	check(a.proj, "camera at rest")

	panned := scratchSystem(sys)
	panned.SetCameraX(sys.CameraX() + worldWidth/2)
	check(panned.Projection(), "camera panned")
}

// scratchSystem returns a detached copy of sys with the same viewport and
// panel. Its notifications are dropped.
func scratchSystem(sys *coords.System) *coords.System {
	vw, vh := sys.Viewport()
	pw, ph := sys.SidePanel()
	scratch := coords.NewWithOptions(sys.Config(), coords.StaticWindow{Width: vw + pw, Height: vh + ph}, coords.Options{
		Scheduler: func(func()) {},
	})
	scratch.SetSidePanelWidth(pw)
	scratch.SetSidePanelHeight(ph)
	return scratch
}

var extremes = []coords.WorldCoordinate{
	{X: math.NaN(), Y: math.NaN(), Z: math.NaN()},
	{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
	{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	{X: -1e12, Y: -1e12, Z: -1e12},
	{X: 1e12, Y: 1e12, Z: 1e12},
}

func (a *auditor) checkClampSafety(sys *coords.System) {
	for _, c := range extremes {
		clamped := sys.ClampToWorldBounds(c)
		if !sys.IsWithinBounds(clamped) {
			a.fail(CheckClampSafety, c.Z, "clamp(%v) = %v is out of bounds", c, clamped)
		}
		s := a.proj.CatToScreen(c)
		if math.IsNaN(s.X) || math.IsNaN(s.Y) || math.IsNaN(s.Scale) {
			a.fail(CheckClampSafety, c.Z, "projection of %v is NaN: %+v", c, s)
		}
	}
}

func (r *Report) summarize() {
	if len(r.Samples) == 0 {
		return
	}
	alignment := make([]float64, len(r.Samples))
	scales := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		alignment[i] = s.AlignmentError
		scales[i] = s.Scale
	}
	r.MeanAlignmentError = stat.Mean(alignment, nil)
	r.MaxAlignmentError = floats.Max(alignment)
	r.MeanScale = stat.Mean(scales, nil)
	r.ScaleStdDev = stat.StdDev(scales, nil)
}

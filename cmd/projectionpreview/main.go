// Projection preview tool - plots the perspective curves for any viewport.
//
// Usage: go run ./cmd/projectionpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/coords"
	"github.com/pthm-cable/catroom/shadow"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	plotWidth    = 560
	plotHeight   = 280
	plotX        = 40
	panelX       = plotX + plotWidth + 40
	panelWidth   = windowWidth - panelX - 20
	samples      = 120
)

// previewParams holds the simulated window.
type previewParams struct {
	WindowWidth  float32
	WindowHeight float32
	PanelWidth   float32
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Projection Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := previewParams{
		WindowWidth:  float32(cfg.Screen.Width),
		WindowHeight: float32(cfg.Screen.Height),
		PanelWidth:   float32(cfg.Panel.SidePanelWidth),
	}

	// The simulated window is read through a closure so sliders resize it
	window := coords.WindowFunc(func() (float64, float64) {
		return float64(params.WindowWidth), float64(params.WindowHeight)
	})
	sched := &coords.ManualScheduler{}
	sys := coords.NewWithOptions(cfg, window, coords.Options{Scheduler: sched.Schedule})
	shadowParams := shadow.ParamsFromConfig(cfg.Shadow)

	zs := floats.Span(make([]float64, samples), cfg.Derived.MinZ, cfg.Derived.MaxZ)
	scales := make([]float64, samples)
	ys := make([]float64, samples)
	shadows := make([]float64, samples)

	needsRecompute := true
	sys.Subscribe(func() { needsRecompute = true })

	for !rl.WindowShouldClose() {
		sched.Flush()
		if needsRecompute {
			proj := sys.Projection()
			for i, z := range zs {
				pos := proj.CatToScreen(coords.WorldCoordinate{X: cfg.World.Width / 2, Z: z})
				scales[i] = pos.Scale
				ys[i] = pos.Y
				shadows[i] = shadowParams.Compute(pos, 0).Width
			}
			needsRecompute = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		floor := sys.FloorDimensions()
		top := int32(40)
		drawPlot("scale vs z", zs, scales, 0, cfg.Perspective.MaxScale, top, rl.Maroon)
		drawPlot("y (px from bottom) vs z", zs, ys, 0, floor.ScreenHeight, top+plotHeight+60, rl.DarkBlue)
		rl.DrawText(fmt.Sprintf("shadow width: %.1f .. %.1f px", floats.Min(shadows), floats.Max(shadows)),
			plotX, top+2*plotHeight+90, 16, rl.DarkGray)

		// Control panel
		px := float32(panelX)
		py := float32(10)

		rl.DrawText("Viewport", int32(px), int32(py), 20, rl.DarkGray)
		py += 35

		py = slider("Window width", &params.WindowWidth, 200, 2560, px, py, sys.UpdateViewport)
		py = slider("Window height", &params.WindowHeight, 20, 1440, px, py, sys.UpdateViewport)

		panel := params.PanelWidth
		py = slider("Side panel width", &panel, 0, 800, px, py, func() {
			params.PanelWidth = panel
			sys.SetSidePanelWidth(float64(panel))
		})

		py += 10
		vw, vh := sys.Viewport()
		lines := []string{
			fmt.Sprintf("Viewport: %.0f x %.0f", vw, vh),
			fmt.Sprintf("Floor strip: %.1f px", floor.ScreenHeight),
			fmt.Sprintf("World scale: %.3f", floor.WorldScale),
			fmt.Sprintf("Scale range: %.3f .. %.3f", scales[0], scales[samples-1]),
			fmt.Sprintf("Depth: %.0f .. %.0f", cfg.Derived.MinZ, cfg.Derived.MaxZ),
		}
		for _, line := range lines {
			rl.DrawText(line, int32(px), int32(py), 16, rl.DarkGray)
			py += 22
		}

		py += 10
		if gui.Button(rl.Rectangle{X: px, Y: py, Width: 140, Height: 28}, "Reset") {
			params = previewParams{
				WindowWidth:  float32(cfg.Screen.Width),
				WindowHeight: float32(cfg.Screen.Height),
				PanelWidth:   float32(cfg.Panel.SidePanelWidth),
			}
			sys.BatchUpdate(func() {
				sys.SetSidePanelWidth(float64(params.PanelWidth))
				sys.UpdateViewport()
			})
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider and calls onChange when the value moves.
func slider(label string, value *float32, min, max, x, y float32, onChange func()) float32 {
	rl.DrawText(label, int32(x), int32(y), 14, rl.Gray)
	y += 18
	newValue := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: float32(panelWidth - 80), Height: 20},
		fmt.Sprintf("%.0f", min), fmt.Sprintf("%.0f", max),
		*value, min, max,
	)
	rl.DrawText(fmt.Sprintf("%.0f", *value), int32(x+float32(panelWidth-70)), int32(y+2), 16, rl.DarkGray)
	if newValue != *value {
		*value = newValue
		onChange()
	}
	return y + 35
}

// drawPlot draws ys against xs in a box, with ys mapped from [lo, hi].
func drawPlot(title string, xs, ys []float64, lo, hi float64, top int32, color rl.Color) {
	rl.DrawText(title, plotX, top-22, 16, rl.DarkGray)
	rl.DrawRectangleLines(plotX, top, plotWidth, plotHeight, rl.DarkGray)
	if hi <= lo || len(xs) < 2 {
		return
	}

	xMin, xMax := xs[0], xs[len(xs)-1]
	if xMax <= xMin {
		return
	}
	point := func(i int) rl.Vector2 {
		fx := (xs[i] - xMin) / (xMax - xMin)
		fy := (ys[i] - lo) / (hi - lo)
		return rl.Vector2{
			X: float32(plotX) + float32(fx)*plotWidth,
			Y: float32(top) + plotHeight - float32(fy)*plotHeight,
		}
	}
	for i := 1; i < len(xs); i++ {
		rl.DrawLineV(point(i-1), point(i), color)
	}
	rl.DrawText(fmt.Sprintf("%.2f", hi), plotX+plotWidth+6, top, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("%.2f", lo), plotX+plotWidth+6, top+plotHeight-12, 12, rl.Gray)
}

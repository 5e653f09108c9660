// Package viewer draws the room in a raylib window.
//
// The room occupies the viewport; the side panel on the right holds controls and
// readouts. Change notifications from the coordinate system are flushed once per
// frame, so listeners run on the render goroutine.
package viewer

import (
	"fmt"
	"log/slog"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/tanema/gween/ease"

	"github.com/pthm-cable/catroom/camera"
	"github.com/pthm-cable/catroom/components"
	"github.com/pthm-cable/catroom/coords"
	"github.com/pthm-cable/catroom/placement"
	"github.com/pthm-cable/catroom/shadow"
)

// Cat movement
const (
	catSpeedX   = 320.0  // world units per second
	catSpeedZ   = 420.0  // world units per second
	jumpSpeed   = 520.0  // world units per second
	gravity     = 1400.0 // world units per second squared
	catWidth    = 150.0  // px at scale 1
	catHeight   = 95.0   // px at scale 1
	scrollSpeed = 0.45   // seconds per camera scroll
)

var (
	wallColor  = rl.NewColor(236, 226, 208, 255)
	floorColor = rl.NewColor(186, 150, 112, 255)
	rugColor   = rl.NewColor(146, 72, 84, 255)
	woodColor  = rl.NewColor(120, 86, 60, 255)
	frameColor = rl.NewColor(90, 110, 140, 255)
	catColor   = rl.NewColor(64, 64, 72, 255)
	panelColor = rl.NewColor(245, 245, 245, 255)
)

// Window reports the raylib screen size.
type Window struct{}

// Size implements coords.Window.
func (Window) Size() (float64, float64) {
	return float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
}

// View holds the interactive state of the room window.
type View struct {
	sys       *coords.System
	sched     *coords.ManualScheduler
	furniture *placement.Service
	shadow    shadow.Params
	cam       *camera.Camera
	logger    *slog.Logger

	cat   coords.WorldCoordinate
	catVY float64

	layouts []placement.Layout
	dirty   bool

	unsubscribe func()
}

// New creates a view. sched must be the scheduler sys was built with.
func New(sys *coords.System, sched *coords.ManualScheduler, furniture *placement.Service, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := sys.Config()
	v := &View{
		sys:       sys,
		sched:     sched,
		furniture: furniture,
		shadow:    shadow.ParamsFromConfig(cfg.Shadow),
		logger:    logger,
		cat: coords.WorldCoordinate{
			X: cfg.World.Width / 2,
			Z: cfg.Derived.MinZ + cfg.Derived.DepthSpan*0.75,
		},
		dirty: true,
	}
	floor := sys.FloorDimensions()
	v.cam = camera.New(floor.ScreenWidth, floor.WorldWidth*floor.WorldScale)
	v.unsubscribe = sys.Subscribe(func() { v.dirty = true })
	return v
}

// Unload detaches the view from the coordinate system.
func (v *View) Unload() {
	v.unsubscribe()
}

// Update advances one frame.
func (v *View) Update() {
	dt := rl.GetFrameTime()

	if rl.IsWindowResized() {
		v.sys.UpdateViewport()
	}

	v.updateCat(float64(dt))
	v.updateCamera(dt)

	v.sched.Flush()
	if v.dirty {
		v.refresh()
	}
}

func (v *View) updateCat(dt float64) {
	next := v.cat
	if rl.IsKeyDown(rl.KeyLeft) {
		next.X -= catSpeedX * dt
	}
	if rl.IsKeyDown(rl.KeyRight) {
		next.X += catSpeedX * dt
	}
	if rl.IsKeyDown(rl.KeyUp) {
		next.Z -= catSpeedZ * dt
	}
	if rl.IsKeyDown(rl.KeyDown) {
		next.Z += catSpeedZ * dt
	}

	if rl.IsKeyPressed(rl.KeySpace) && v.cat.Y == 0 {
		v.catVY = jumpSpeed
	}
	if v.cat.Y > 0 || v.catVY > 0 {
		v.catVY -= gravity * dt
		next.Y += v.catVY * dt
		if next.Y <= 0 {
			next.Y = 0
			v.catVY = 0
		}
	}

	v.cat = v.sys.SanitizeCoordinate(next, v.cat)
}

func (v *View) updateCamera(dt float32) {
	floor := v.sys.FloorDimensions()
	v.cam.Resize(floor.ScreenWidth, floor.WorldWidth*floor.WorldScale)

	step := floor.ScreenWidth / 2
	switch {
	case rl.IsKeyPressed(rl.KeyA):
		v.cam.ScrollTo(v.cam.X-step, scrollSpeed, ease.OutQuad)
	case rl.IsKeyPressed(rl.KeyD):
		v.cam.ScrollTo(v.cam.X+step, scrollSpeed, ease.OutQuad)
	case rl.IsKeyPressed(rl.KeyHome):
		v.cam.Reset()
	}
	v.cam.Update(dt)
	v.sys.SetCameraX(v.cam.X)
}

func (v *View) refresh() {
	v.layouts = v.furniture.Layouts()
	v.dirty = false
	vw, vh := v.sys.Viewport()
	v.logger.Debug("room layout refreshed", "items", len(v.layouts), "viewport_width", vw, "viewport_height", vh)
}

// Draw renders one frame.
func (v *View) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(panelColor)

	proj := v.sys.Projection()
	floor := proj.Floor()
	_, vh := v.sys.Viewport()

	rl.BeginScissorMode(0, 0, int32(floor.ScreenWidth), int32(vh))
	rl.DrawRectangle(0, 0, int32(floor.ScreenWidth), int32(vh), wallColor)
	rl.DrawRectangle(0, int32(vh-floor.ScreenHeight), int32(floor.ScreenWidth), int32(floor.ScreenHeight), floorColor)

	catScreen := proj.CatToScreen(v.cat)
	catZ := proj.ZIndex(v.cat.Z)

	// Floor band first: rugs and furniture shadows, then the cat's shadow
	for _, l := range v.layouts {
		if l.Item.Spec.Mount == components.MountRug {
			v.drawBox(vh, l.Left, l.Bottom, l.Width, l.Height, rugColor)
		}
		if l.Shadow != nil {
			v.drawShadow(vh, l.Shadow.Left, l.Shadow.Bottom, l.Shadow.Width, l.Shadow.Height)
		}
	}
	sh := v.shadow.ForEntity(proj, v.cat)
	v.drawShadow(vh, sh.Left, sh.Bottom, sh.Width, sh.Height)

	// Then furniture and the cat by depth
	catDrawn := false
	for _, l := range v.layouts {
		if l.Item.Spec.Mount == components.MountRug {
			continue
		}
		if !catDrawn && catZ < l.ZIndex {
			v.drawCat(vh, catScreen)
			catDrawn = true
		}
		color := woodColor
		if l.Item.Spec.Mount == components.MountWall {
			color = frameColor
		}
		v.drawBox(vh, l.Left, l.Bottom, l.Width, l.Height, color)
	}
	if !catDrawn {
		v.drawCat(vh, catScreen)
	}
	rl.EndScissorMode()

	v.drawPanel(proj, catScreen)
}

// toScreenY converts a bottom-origin offset in the game layer into a raylib y.
func toScreenY(viewportH, bottom float64) int32 {
	return int32(math.Round(viewportH - bottom))
}

func (v *View) drawBox(vh, left, bottom, width, height float64, color rl.Color) {
	x := v.cam.WorldToScreen(left)
	if !v.cam.IsVisible(left, width) {
		return
	}
	rl.DrawRectangle(int32(math.Round(x)), toScreenY(vh, bottom+height), int32(math.Round(width)), int32(math.Round(height)), color)
}

func (v *View) drawShadow(vh, left, bottom, width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	cx := v.cam.WorldToScreen(left + width/2)
	rl.DrawEllipse(int32(math.Round(cx)), toScreenY(vh, bottom+height/2), float32(width/2), float32(height/2), rl.Fade(rl.Black, 0.25))
}

func (v *View) drawCat(vh float64, pos coords.ScreenPosition) {
	w := catWidth * pos.Scale
	h := catHeight * pos.Scale
	v.drawBox(vh, pos.X-w/2, pos.Y, w, h, catColor)
}

func (v *View) drawPanel(proj coords.Projection, catScreen coords.ScreenPosition) {
	floor := proj.Floor()
	vw, vh := v.sys.Viewport()
	panelW, _ := v.sys.SidePanel()
	x := float32(floor.ScreenWidth) + 15
	y := float32(15)

	rl.DrawText("Cat Room", int32(x), int32(y), 20, rl.DarkGray)
	y += 35

	lines := []string{
		fmt.Sprintf("Viewport: %.0f x %.0f", vw, vh),
		fmt.Sprintf("Floor strip: %.0f px  world scale: %.3f", floor.ScreenHeight, floor.WorldScale),
		fmt.Sprintf("Cat world: (%.0f, %.0f, %.0f)", v.cat.X, v.cat.Y, v.cat.Z),
		fmt.Sprintf("Cat screen: (%.0f, %.0f) scale %.3f", catScreen.X, catScreen.Y, catScreen.Scale),
		fmt.Sprintf("Camera: %.0f / %.0f", v.cam.X, v.cam.MaxX()),
		fmt.Sprintf("Furniture: %d", v.furniture.Len()),
	}
	for _, line := range lines {
		rl.DrawText(line, int32(x), int32(y), 14, rl.Gray)
		y += 20
	}
	y += 15

	rl.DrawText("Side panel width", int32(x), int32(y), 14, rl.Gray)
	y += 18
	newPanel := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: 200, Height: 20},
		"240", "700",
		float32(panelW), 240, 700,
	)
	if float64(newPanel) != panelW {
		v.sys.SetSidePanelWidth(math.Round(float64(newPanel)))
	}
	y += 35

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 140, Height: 28}, "Reset camera") {
		v.cam.ScrollTo(0, scrollSpeed, ease.OutQuad)
	}
	y += 45

	rl.DrawText("Arrows: walk  Space: jump  A/D: pan", int32(x), int32(y), 12, rl.Gray)
}

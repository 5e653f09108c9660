package coords

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/catroom/config"
)

// Options configures a System beyond the defaults.
type Options struct {
	// Scheduler defers change notifications (default DeferredScheduler).
	Scheduler Scheduler
	// Logger receives viewport changes at debug level (default slog.Default()).
	Logger *slog.Logger
}

// System is the single source of truth for the viewport and the world-to-screen
// projection. Reads vastly outnumber writes: projections take a read lock once,
// resize and panel changes take the write lock.
//
// Subscribers are notified after configuration changes through the Scheduler.
// Rapid successive changes collapse into a single notification.
type System struct {
	cfg    *config.Config
	window Window
	logger *slog.Logger

	mu              sync.RWMutex
	viewportWidth   float64
	viewportHeight  float64
	sidePanelWidth  float64
	sidePanelHeight float64
	cameraX         float64

	notify notifier
}

// New creates a coordinate system for the given window using default options.
func New(cfg *config.Config, window Window) *System {
	return NewWithOptions(cfg, window, Options{})
}

// NewWithOptions creates a coordinate system with the given options.
// The viewport is computed immediately; no notification is sent for it.
func NewWithOptions(cfg *config.Config, window Window, opts Options) *System {
	if opts.Scheduler == nil {
		opts.Scheduler = DeferredScheduler
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &System{
		cfg:             cfg,
		window:          window,
		logger:          opts.Logger,
		sidePanelWidth:  nonNegative(cfg.Panel.SidePanelWidth, 0),
		sidePanelHeight: nonNegative(cfg.Panel.SidePanelHeight, 0),
		notify:          notifier{schedule: opts.Scheduler},
	}
	s.refreshViewport()
	return s
}

// Config returns the configuration the system was built with.
func (s *System) Config() *config.Config {
	return s.cfg
}

// UpdateViewport re-reads the window size and recomputes the viewport, minus the
// side panel. Call it on window resize.
func (s *System) UpdateViewport() {
	w, h := s.refreshViewport()
	s.logger.Debug("viewport updated", "width", w, "height", h)
	s.notify.changed()
}

func (s *System) refreshViewport() (float64, float64) {
	winW, winH := s.window.Size()

	s.mu.Lock()
	defer s.mu.Unlock()
	// A bogus window size keeps the last good viewport
	if isFinite(winW) {
		s.viewportWidth = math.Max(0, math.Round(winW-s.sidePanelWidth))
	}
	if isFinite(winH) {
		s.viewportHeight = math.Max(0, math.Round(winH-s.sidePanelHeight))
	}
	return s.viewportWidth, s.viewportHeight
}

// SetSidePanelWidth reserves px on the side for UI and updates the viewport.
func (s *System) SetSidePanelWidth(px float64) {
	s.mu.Lock()
	s.sidePanelWidth = nonNegative(px, s.sidePanelWidth)
	s.mu.Unlock()
	s.UpdateViewport()
}

// SetSidePanelHeight reserves px at the bottom for UI in column layouts.
func (s *System) SetSidePanelHeight(px float64) {
	s.mu.Lock()
	s.sidePanelHeight = nonNegative(px, s.sidePanelHeight)
	s.mu.Unlock()
	s.UpdateViewport()
}

// SetCameraX stores the camera pan. It is not applied by any projection; the view
// layer applies it once as an offset of the whole world.
func (s *System) SetCameraX(x float64) {
	if !isFinite(x) {
		return
	}
	s.mu.Lock()
	changed := s.cameraX != x
	s.cameraX = x
	s.mu.Unlock()
	if changed {
		s.notify.changed()
	}
}

// CameraX returns the stored camera pan.
func (s *System) CameraX() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cameraX
}

// Viewport returns the current viewport size in px.
func (s *System) Viewport() (width, height float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewportWidth, s.viewportHeight
}

// SidePanel returns the reserved panel width and height.
func (s *System) SidePanel() (width, height float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidePanelWidth, s.sidePanelHeight
}

// Subscribe registers fn to run after configuration changes. The returned func
// removes it and is safe to call more than once.
//
// fn runs wherever the Scheduler puts it. With the default DeferredScheduler that
// is a timer goroutine, not the caller's, so fn must not touch unsynchronized
// state such as render or ECS data. Use a ManualScheduler and Flush from the owning
// goroutine when that matters.
func (s *System) Subscribe(fn func()) (unsubscribe func()) {
	return s.notify.subscribe(fn)
}

// BatchUpdate runs fn with notifications suppressed and sends one afterwards.
func (s *System) BatchUpdate(fn func()) {
	s.notify.batch(fn)
}

// Projection returns a snapshot of the current viewport for projecting.
func (s *System) Projection() Projection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewProjection(s.cfg, s.viewportWidth, s.viewportHeight)
}

// FloorDimensions returns the floor strip for the current viewport.
func (s *System) FloorDimensions() FloorDimensions {
	return s.Projection().Floor()
}

// CatToScreen projects c with the current viewport. See Projection.CatToScreen.
func (s *System) CatToScreen(c WorldCoordinate) ScreenPosition {
	return s.Projection().CatToScreen(c)
}

// WallToScreen projects a wall-mounted item with the current viewport.
func (s *System) WallToScreen(c WorldCoordinate) ScreenPosition {
	return s.Projection().WallToScreen(c)
}

// ScreenToCat maps a screen point back to a grounded world coordinate.
func (s *System) ScreenToCat(screenX, screenY float64) WorldCoordinate {
	return s.Projection().ScreenToCat(screenX, screenY)
}

// ScreenToCatAtDepth maps a screen point back to the world at depth z.
func (s *System) ScreenToCatAtDepth(screenX, screenY, z float64) WorldCoordinate {
	return s.Projection().ScreenToCatAtDepth(screenX, screenY, z)
}

// ShadowPosition is the legacy shadow projection.
//
// Deprecated: use CatToScreen(c.Grounded()) with the shadow package.
func (s *System) ShadowPosition(c WorldCoordinate) ScreenPosition {
	return s.Projection().ShadowPosition(c)
}

// ClampToWorldBounds clamps c into the room. Viewport independent.
func (s *System) ClampToWorldBounds(c WorldCoordinate) WorldCoordinate {
	return Projection{cfg: s.cfg}.ClampToWorldBounds(c)
}

// IsWithinBounds reports whether c lies inside the room.
func (s *System) IsWithinBounds(c WorldCoordinate) bool {
	return Projection{cfg: s.cfg}.IsWithinBounds(c)
}

// SanitizeCoordinate falls back to prev for non-finite components, then clamps.
func (s *System) SanitizeCoordinate(next, prev WorldCoordinate) WorldCoordinate {
	return Projection{cfg: s.cfg}.SanitizeCoordinate(next, prev)
}

func nonNegative(v, fallback float64) float64 {
	if !isFinite(v) {
		return fallback
	}
	return math.Max(0, v)
}

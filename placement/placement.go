// Package placement places furniture in the room and lays it out on screen.
//
// Furniture lives in an ECS world. Floor items and rugs are kept apart from
// items on their own layer using floor footprints; wall items are kept apart
// on the wall plane. A Service is not safe for concurrent use.
package placement

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/catroom/components"
	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/coords"
	"github.com/pthm-cable/catroom/floorspace"
	"github.com/pthm-cable/catroom/shadow"
)

var (
	// ErrNoSpace is returned when no free spot was found for an item.
	ErrNoSpace = errors.New("no free space")
	// ErrNotFound is returned for unknown item IDs.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidSpec is returned for items with non-positive or non-finite sizes.
	ErrInvalidSpec = errors.New("invalid furniture spec")
)

// Spec describes an item to place.
type Spec struct {
	Kind   string
	Mount  components.Mount
	Width  float64
	Depth  float64
	Height float64
}

// SpecsFromConfig expands the furniture catalogue into one Spec per instance.
func SpecsFromConfig(cfg *config.Config) ([]Spec, error) {
	var specs []Spec
	for _, f := range cfg.Furniture {
		mount, err := components.ParseMount(f.Mount)
		if err != nil {
			return nil, fmt.Errorf("furniture %q: %w", f.Name, err)
		}
		for i := 0; i < f.Count; i++ {
			specs = append(specs, Spec{
				Kind:   f.Name,
				Mount:  mount,
				Width:  f.Width,
				Depth:  f.Depth,
				Height: f.Height,
			})
		}
	}
	return specs, nil
}

func (s Spec) validate() error {
	for _, v := range []float64{s.Width, s.Depth, s.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s: %w", s.Kind, ErrInvalidSpec)
		}
	}
	if s.Width == 0 {
		return fmt.Errorf("%s: zero width: %w", s.Kind, ErrInvalidSpec)
	}
	if s.Mount != components.MountWall && s.Depth == 0 {
		return fmt.Errorf("%s: zero depth: %w", s.Kind, ErrInvalidSpec)
	}
	if s.Mount > components.MountRug {
		return fmt.Errorf("%s: %w", s.Kind, ErrInvalidSpec)
	}
	return nil
}

// Item is a placed piece of furniture.
type Item struct {
	ID       uuid.UUID
	Spec     Spec
	Position coords.WorldCoordinate
}

// Layout is the on-screen box of an item.
type Layout struct {
	Item   Item
	Left   float64 // px
	Bottom float64 // px from the bottom of the game layer
	Width  float64
	Height float64
	Scale  float64
	ZIndex int

	// Shadow is the floor shadow under a floor item, nil otherwise. It is sized
	// from the item's own projected width, so it tracks perspective like the item.
	Shadow *shadow.Layout
}

// Options configures a Service.
type Options struct {
	Seed   int64
	Logger *slog.Logger // default slog.Default()
}

// Service owns the placed furniture.
type Service struct {
	sys    *coords.System
	cfg    *config.Config
	floor  *floorspace.Manager
	rng    *rand.Rand
	logger *slog.Logger

	world        *ecs.World
	entityMapper *ecs.Map3[components.Position, components.Footprint, components.Furniture]
	entityFilter *ecs.Filter3[components.Position, components.Footprint, components.Furniture]
	posMap       *ecs.Map1[components.Position]
	fpMap        *ecs.Map1[components.Footprint]
	furnMap      *ecs.Map1[components.Furniture]

	byID map[uuid.UUID]ecs.Entity
}

// New creates an empty placement service for sys.
func New(sys *coords.System, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	world := ecs.NewWorld()
	return &Service{
		sys:    sys,
		cfg:    sys.Config(),
		floor:  floorspace.NewManager(sys),
		rng:    rand.New(rand.NewSource(opts.Seed)),
		logger: opts.Logger,
		world:  world,
		entityMapper: ecs.NewMap3[
			components.Position,
			components.Footprint,
			components.Furniture,
		](world),
		entityFilter: ecs.NewFilter3[
			components.Position,
			components.Footprint,
			components.Furniture,
		](world),
		posMap:  ecs.NewMap1[components.Position](world),
		fpMap:   ecs.NewMap1[components.Footprint](world),
		furnMap: ecs.NewMap1[components.Furniture](world),
		byID:    make(map[uuid.UUID]ecs.Entity),
	}
}

// Len returns the number of placed items.
func (s *Service) Len() int {
	return len(s.byID)
}

// Place puts an item at a random free spot.
func (s *Service) Place(spec Spec) (Item, error) {
	if err := spec.validate(); err != nil {
		return Item{}, err
	}

	attempts := s.cfg.Placement.MaxAttempts
	for i := 1; i <= attempts; i++ {
		pos := s.randomPosition(spec)
		if s.collides(spec, pos) {
			continue
		}
		item := s.insert(spec, pos)
		s.logger.Debug("furniture placed",
			"kind", spec.Kind,
			"mount", spec.Mount.String(),
			"attempts", i,
			"x", pos.X, "y", pos.Y, "z", pos.Z,
		)
		return item, nil
	}

	s.logger.Warn("no space for furniture", "kind", spec.Kind, "attempts", attempts)
	return Item{}, fmt.Errorf("placing %s after %d attempts: %w", spec.Kind, attempts, ErrNoSpace)
}

// PlaceAt puts an item at pos, clamped into the room.
func (s *Service) PlaceAt(spec Spec, pos coords.WorldCoordinate) (Item, error) {
	if err := spec.validate(); err != nil {
		return Item{}, err
	}
	pos = s.normalize(spec, s.sys.ClampToWorldBounds(pos))
	if s.collides(spec, pos) {
		return Item{}, fmt.Errorf("placing %s at (%.0f, %.0f, %.0f): %w", spec.Kind, pos.X, pos.Y, pos.Z, ErrNoSpace)
	}
	return s.insert(spec, pos), nil
}

// SetPosition moves an item. Non-finite components keep their previous value and
// the result is clamped into the room. Overlaps are not checked.
func (s *Service) SetPosition(id uuid.UUID, c coords.WorldCoordinate) (coords.WorldCoordinate, error) {
	e, ok := s.byID[id]
	if !ok || !s.world.Alive(e) {
		return coords.WorldCoordinate{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	pos := s.posMap.Get(e)
	spec := s.specOf(e)

	next := s.sys.SanitizeCoordinate(c, toWorld(*pos))
	next = s.normalize(spec, next)
	*pos = fromWorld(next)
	return next, nil
}

// Remove deletes an item.
func (s *Service) Remove(id uuid.UUID) error {
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	delete(s.byID, id)
	if s.world.Alive(e) {
		s.entityMapper.Remove(e)
	}
	return nil
}

// Get returns the item with the given ID.
func (s *Service) Get(id uuid.UUID) (Item, error) {
	e, ok := s.byID[id]
	if !ok || !s.world.Alive(e) {
		return Item{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return s.itemOf(e), nil
}

// Items returns all items ordered back to front, then left to right.
func (s *Service) Items() []Item {
	items := make([]Item, 0, len(s.byID))
	query := s.entityFilter.Query()
	for query.Next() {
		pos, fp, furn := query.Get()
		items = append(items, Item{
			ID:       furn.ID,
			Spec:     specFrom(fp, furn),
			Position: toWorld(*pos),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].Position, items[j].Position
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items
}

// Layouts lays out every item against a single projection snapshot, sorted by
// draw order.
func (s *Service) Layouts() []Layout {
	proj := s.sys.Projection()
	items := s.Items()
	layouts := make([]Layout, 0, len(items))
	for _, item := range items {
		layouts = append(layouts, s.layout(proj, item))
	}
	sort.SliceStable(layouts, func(i, j int) bool {
		return layouts[i].ZIndex < layouts[j].ZIndex
	})
	return layouts
}

func (s *Service) layout(proj coords.Projection, item Item) Layout {
	spec := item.Spec
	pos := item.Position

	switch spec.Mount {
	case components.MountRug:
		fl := s.floor.LayoutWith(proj, s.floor.CreateRugConfig(pos.X, pos.Z, spec.Width, spec.Depth))
		return Layout{
			Item:   item,
			Left:   fl.ScreenX,
			Bottom: fl.ScreenY,
			Width:  fl.ScreenWidth,
			Height: fl.ScreenHeight,
			Scale:  fl.FloorScale,
			ZIndex: fl.ZIndex,
		}

	case components.MountWall:
		sp := proj.WallToScreen(pos)
		w := spec.Width * proj.Floor().WorldScale
		return Layout{
			Item:   item,
			Left:   sp.X - w/2,
			Bottom: sp.Y,
			Width:  w,
			Height: spec.Height * proj.Floor().WorldScale,
			Scale:  sp.Scale,
			ZIndex: proj.ZIndex(pos.Z),
		}

	default:
		sp := proj.CatToScreen(pos.Grounded())
		w := spec.Width * sp.Scale
		sh := s.shadowFor(spec, sp)
		return Layout{
			Item:   item,
			Left:   sp.X - w/2,
			Bottom: sp.Y,
			Width:  w,
			Height: spec.Height * sp.Scale,
			Scale:  sp.Scale,
			ZIndex: proj.ZIndex(pos.Z),
			Shadow: &sh,
		}
	}
}

// shadowFor lays out the shadow of a grounded floor item from its screen
// position, using the configured shadow geometry with the item width as base.
func (s *Service) shadowFor(spec Spec, sp coords.ScreenPosition) shadow.Layout {
	p := shadow.ParamsFromConfig(s.cfg.Shadow)
	p.BaseWidth = spec.Width
	return p.Compute(sp, 0)
}

func (s *Service) insert(spec Spec, pos coords.WorldCoordinate) Item {
	id := uuid.New()
	p := fromWorld(pos)
	fp := components.Footprint{Width: spec.Width, Depth: spec.Depth, Height: spec.Height}
	furn := components.Furniture{ID: id, Kind: spec.Kind, Mount: spec.Mount}
	e := s.entityMapper.NewEntity(&p, &fp, &furn)
	s.byID[id] = e
	return Item{ID: id, Spec: spec, Position: pos}
}

// randomPosition picks a spot whose footprint stays Margin away from the room edges.
func (s *Service) randomPosition(spec Spec) coords.WorldCoordinate {
	margin := s.cfg.Placement.Margin
	w := s.cfg.World
	d := s.cfg.Derived

	x := s.uniform(spec.Width/2+margin, w.Width-spec.Width/2-margin)
	if spec.Mount == components.MountWall {
		p := s.cfg.Placement
		y := s.uniform(p.WallMinY, math.Min(p.WallMaxY, w.Height-spec.Height))
		return coords.WorldCoordinate{X: x, Y: y, Z: d.MinZ}
	}
	z := s.uniform(d.MinZ+spec.Depth/2+margin, d.MaxZ-spec.Depth/2-margin)
	return coords.WorldCoordinate{X: x, Y: 0, Z: z}
}

func (s *Service) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return (lo + hi) / 2
	}
	return lo + s.rng.Float64()*(hi-lo)
}

// normalize pins an item to its mount: wall items on the wall, the rest on the floor.
func (s *Service) normalize(spec Spec, pos coords.WorldCoordinate) coords.WorldCoordinate {
	if spec.Mount == components.MountWall {
		pos.Z = s.cfg.Derived.MinZ
		return pos
	}
	return pos.Grounded()
}

// collides reports whether spec at pos overlaps an item on the same mount,
// including the placement margin.
func (s *Service) collides(spec Spec, pos coords.WorldCoordinate) bool {
	margin := s.cfg.Placement.Margin
	candidate := s.floorConfig(spec, pos)
	candidate.LogicalWidth += 2 * margin
	candidate.LogicalDepth += 2 * margin

	hit := false
	query := s.entityFilter.Query()
	for query.Next() {
		// Drain the query rather than breaking out of it
		if hit {
			continue
		}
		p, fp, furn := query.Get()
		if furn.Mount != spec.Mount {
			continue
		}
		other := s.floorConfig(specFrom(fp, furn), toWorld(*p))
		hit = s.floor.CheckFloorOverlap(candidate, other)
	}
	return hit
}

// floorConfig describes an item for overlap checks. Wall items use the wall
// plane, with height standing in for depth.
func (s *Service) floorConfig(spec Spec, pos coords.WorldCoordinate) floorspace.Config {
	switch spec.Mount {
	case components.MountRug:
		return s.floor.CreateRugConfig(pos.X, pos.Z, spec.Width, spec.Depth)
	case components.MountWall:
		return floorspace.Config{
			CenterX:      pos.X,
			CenterZ:      pos.Y + spec.Height/2,
			LogicalWidth: spec.Width,
			LogicalDepth: spec.Height,
			Layer:        floorspace.LayerFurniture,
		}
	default:
		return floorspace.Config{
			CenterX:      pos.X,
			CenterZ:      pos.Z,
			LogicalWidth: spec.Width,
			LogicalDepth: spec.Depth,
			Layer:        floorspace.LayerFurniture,
		}
	}
}

func (s *Service) itemOf(e ecs.Entity) Item {
	furn := s.furnMap.Get(e)
	return Item{
		ID:       furn.ID,
		Spec:     s.specOf(e),
		Position: toWorld(*s.posMap.Get(e)),
	}
}

func (s *Service) specOf(e ecs.Entity) Spec {
	return specFrom(s.fpMap.Get(e), s.furnMap.Get(e))
}

func specFrom(fp *components.Footprint, furn *components.Furniture) Spec {
	return Spec{
		Kind:   furn.Kind,
		Mount:  furn.Mount,
		Width:  fp.Width,
		Depth:  fp.Depth,
		Height: fp.Height,
	}
}

func toWorld(p components.Position) coords.WorldCoordinate {
	return coords.WorldCoordinate{X: p.X, Y: p.Y, Z: p.Z}
}

func fromWorld(c coords.WorldCoordinate) components.Position {
	return components.Position{X: c.X, Y: c.Y, Z: c.Z}
}

// Package config provides configuration loading and access for the cat room.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all room configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Perspective PerspectiveConfig `yaml:"perspective"`
	Floor       FloorConfig       `yaml:"floor"`
	Shadow      ShadowConfig      `yaml:"shadow"`
	Rug         RugConfig         `yaml:"rug"`
	Panel       PanelConfig       `yaml:"panel"`
	Placement   PlacementConfig   `yaml:"placement"`
	Audit       AuditConfig       `yaml:"audit"`
	Furniture   []FurnitureConfig `yaml:"furniture"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the graphical viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the logical room dimensions in world units.
type WorldConfig struct {
	Width       float64 `yaml:"width"`        // x extent
	Height      float64 `yaml:"height"`       // y extent, 0 = standing on the floor
	Depth       float64 `yaml:"depth"`        // z extent, increasing toward the camera
	WallDepth   float64 `yaml:"wall_depth"`   // z of the back wall
	FloorMargin float64 `yaml:"floor_margin"` // z kept clear at the front edge
}

// PerspectiveConfig holds the depth scaling curve.
type PerspectiveConfig struct {
	MinScale          float64 `yaml:"min_scale"`
	MaxScale          float64 `yaml:"max_scale"`
	MinWorldHeight    float64 `yaml:"min_world_height"`
	JumpHeightRatio   float64 `yaml:"jump_height_ratio"`
	LegacyShadowScale float64 `yaml:"legacy_shadow_scale"`
}

// FloorConfig holds the floor strip and z-index bands.
type FloorConfig struct {
	Ratio                float64 `yaml:"ratio"`
	ZIndexBase           int     `yaml:"z_index_base"`
	ZIndexRange          int     `yaml:"z_index_range"`
	FurnitureZIndexRange int     `yaml:"furniture_z_index_range"`
}

// ShadowConfig holds ground shadow geometry.
type ShadowConfig struct {
	BaseWidth           float64 `yaml:"base_width"`            // px at scale 1
	ScaleFactor         float64 `yaml:"scale_factor"`          // shadow scale relative to the caster
	AspectRatio         float64 `yaml:"aspect_ratio"`          // height = width * this
	MinSizeRatio        float64 `yaml:"min_size_ratio"`        // smallest shadow relative to ground level
	MaxHeight           float64 `yaml:"max_height"`            // height at which the shadow stops shrinking
	FootprintDepthRatio float64 `yaml:"footprint_depth_ratio"` // logical depth = width * this
}

// RugConfig holds floor decoration parameters.
type RugConfig struct {
	VisualRatio float64 `yaml:"visual_ratio"` // visual size relative to the logical footprint
}

// PanelConfig holds the space reserved for side UI.
type PanelConfig struct {
	SidePanelWidth  float64 `yaml:"side_panel_width"`
	SidePanelHeight float64 `yaml:"side_panel_height"`
}

// PlacementConfig holds random furniture placement parameters.
type PlacementConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	Margin      float64 `yaml:"margin"`     // clearance from room edges in world units
	WallMinY    float64 `yaml:"wall_min_y"` // band for wall-mounted items
	WallMaxY    float64 `yaml:"wall_max_y"`
}

// AuditConfig holds projection audit parameters.
type AuditConfig struct {
	Samples            int     `yaml:"samples"`
	AlignmentTolerance float64 `yaml:"alignment_tolerance"` // px
}

// FurnitureConfig describes one entry of the furniture catalogue.
type FurnitureConfig struct {
	Name   string  `yaml:"name"`
	Mount  string  `yaml:"mount"` // floor, wall or rug
	Width  float64 `yaml:"width"`
	Depth  float64 `yaml:"depth"`
	Height float64 `yaml:"height"`
	Count  int     `yaml:"count"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MinZ      float64 // WallDepth
	MaxZ      float64 // Depth - FloorMargin
	DepthSpan float64 // MaxZ - MinZ, never zero
	ScaleSpan float64 // MaxScale - MinScale
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.World.Width <= 0 {
		errs = append(errs, errors.New("world.width must be positive"))
	}
	if c.World.Height <= 0 {
		errs = append(errs, errors.New("world.height must be positive"))
	}
	if c.World.Depth <= c.World.WallDepth {
		errs = append(errs, errors.New("world.depth must be greater than world.wall_depth"))
	}
	if c.Perspective.MinScale <= 0 || c.Perspective.MaxScale < c.Perspective.MinScale {
		errs = append(errs, errors.New("perspective scales must satisfy 0 < min_scale <= max_scale"))
	}
	if c.Perspective.MinWorldHeight <= 0 {
		errs = append(errs, errors.New("perspective.min_world_height must be positive"))
	}
	if c.Floor.Ratio <= 0 || c.Floor.Ratio > 1 {
		errs = append(errs, errors.New("floor.ratio must be in (0, 1]"))
	}
	if c.Shadow.MinSizeRatio < 0 || c.Shadow.MinSizeRatio > 1 {
		errs = append(errs, errors.New("shadow.min_size_ratio must be in [0, 1]"))
	}
	if c.Shadow.AspectRatio <= 0 {
		errs = append(errs, errors.New("shadow.aspect_ratio must be positive"))
	}
	if c.Rug.VisualRatio <= 0 || c.Rug.VisualRatio > 1 {
		errs = append(errs, errors.New("rug.visual_ratio must be in (0, 1]"))
	}
	for _, f := range c.Furniture {
		switch f.Mount {
		case "floor", "wall", "rug":
		default:
			errs = append(errs, fmt.Errorf("furniture %q: unknown mount %q", f.Name, f.Mount))
		}
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MinZ = c.World.WallDepth
	c.Derived.MaxZ = c.World.Depth - c.World.FloorMargin
	if c.Derived.MaxZ < c.Derived.MinZ {
		c.Derived.MaxZ = c.Derived.MinZ
	}
	c.Derived.DepthSpan = c.Derived.MaxZ - c.Derived.MinZ
	if c.Derived.DepthSpan == 0 {
		// A margin that eats the whole floor would otherwise divide by zero
		c.Derived.DepthSpan = 1
	}
	c.Derived.ScaleSpan = c.Perspective.MaxScale - c.Perspective.MinScale

	if c.Placement.MaxAttempts <= 0 {
		c.Placement.MaxAttempts = 1
	}
	if c.Audit.Samples < 2 {
		c.Audit.Samples = 2
	}
	if c.Shadow.MaxHeight <= 0 {
		c.Shadow.MaxHeight = c.World.Height
	}
	for i := range c.Furniture {
		if c.Furniture[i].Count == 0 {
			c.Furniture[i].Count = 1
		}
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.World.Width != 1400 || cfg.World.Height != 400 || cfg.World.Depth != 1200 {
		t.Errorf("world = %+v, want 1400x400x1200", cfg.World)
	}
	if cfg.Perspective.MinScale != 0.4 || cfg.Perspective.MaxScale != 1.9 {
		t.Errorf("scales = (%v, %v), want (0.4, 1.9)", cfg.Perspective.MinScale, cfg.Perspective.MaxScale)
	}
	if cfg.Floor.Ratio != 0.4 {
		t.Errorf("floor ratio = %v, want 0.4", cfg.Floor.Ratio)
	}
	if cfg.Shadow.BaseWidth != 230 {
		t.Errorf("shadow base width = %v, want 230", cfg.Shadow.BaseWidth)
	}
	if len(cfg.Furniture) == 0 {
		t.Error("expected a default furniture catalogue")
	}
}

func TestComputeDerived(t *testing.T) {
	cfg := Default()

	if cfg.Derived.MinZ != 0 || cfg.Derived.MaxZ != 1200 {
		t.Errorf("z range = [%v, %v], want [0, 1200]", cfg.Derived.MinZ, cfg.Derived.MaxZ)
	}
	if cfg.Derived.DepthSpan != 1200 {
		t.Errorf("depth span = %v, want 1200", cfg.Derived.DepthSpan)
	}
	if diff := cfg.Derived.ScaleSpan - 1.5; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("scale span = %v, want 1.5", cfg.Derived.ScaleSpan)
	}
}

func TestFloorMarginNeverZeroSpan(t *testing.T) {
	cfg := Default()
	cfg.World.FloorMargin = cfg.World.Depth
	cfg.computeDerived()

	if cfg.Derived.DepthSpan <= 0 {
		t.Errorf("depth span = %v, want positive", cfg.Derived.DepthSpan)
	}
	if cfg.Derived.MaxZ != cfg.Derived.MinZ {
		t.Errorf("max z = %v, want clamped to min z %v", cfg.Derived.MaxZ, cfg.Derived.MinZ)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "room.yaml")
	overlay := "panel:\n  side_panel_width: 300\nworld:\n  floor_margin: 100\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Panel.SidePanelWidth != 300 {
		t.Errorf("side panel width = %v, want 300", cfg.Panel.SidePanelWidth)
	}
	// Untouched keys keep their defaults
	if cfg.World.Width != 1400 {
		t.Errorf("world width = %v, want default 1400", cfg.World.Width)
	}
	if cfg.Derived.MaxZ != 1100 {
		t.Errorf("max z = %v, want 1100", cfg.Derived.MaxZ)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
		wantErr string
	}{
		{"zero width", "world:\n  width: 0\n", "world.width"},
		{"inverted scales", "perspective:\n  min_scale: 2\n  max_scale: 1\n", "perspective scales"},
		{"bad floor ratio", "floor:\n  ratio: 1.5\n", "floor.ratio"},
		{"shadow min size above one", "shadow:\n  min_size_ratio: 1.5\n", "shadow.min_size_ratio"},
		{"negative shadow min size", "shadow:\n  min_size_ratio: -0.1\n", "shadow.min_size_ratio"},
		{"flat shadow", "shadow:\n  aspect_ratio: 0\n", "shadow.aspect_ratio"},
		{"zero rug ratio", "rug:\n  visual_ratio: 0\n", "rug.visual_ratio"},
		{"oversized rug ratio", "rug:\n  visual_ratio: 1.2\n", "rug.visual_ratio"},
		{"unknown mount", "furniture:\n  - name: lamp\n    mount: ceiling\n", "unknown mount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Panel.SidePanelWidth = 123

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.Panel.SidePanelWidth != 123 {
		t.Errorf("side panel width = %v, want 123", loaded.Panel.SidePanelWidth)
	}
}

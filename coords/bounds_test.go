package coords

import (
	"math"
	"testing"
)

func TestClampToWorldBounds(t *testing.T) {
	sys, _ := newTestSystem(t)

	tests := []struct {
		name string
		in   WorldCoordinate
		want WorldCoordinate
	}{
		{"inside", WorldCoordinate{X: 700, Y: 100, Z: 600}, WorldCoordinate{X: 700, Y: 100, Z: 600}},
		{"below", WorldCoordinate{X: -10, Y: -5, Z: -1e6}, WorldCoordinate{X: 0, Y: 0, Z: 0}},
		{"above", WorldCoordinate{X: 5000, Y: 900, Z: 1e6}, WorldCoordinate{X: 1400, Y: 400, Z: 1200}},
		{"infinities", WorldCoordinate{X: math.Inf(1), Y: math.Inf(-1), Z: math.Inf(1)}, WorldCoordinate{X: 1400, Y: 0, Z: 1200}},
		{"NaN", WorldCoordinate{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}, WorldCoordinate{X: 0, Y: 0, Z: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sys.ClampToWorldBounds(tt.in)
			if got != tt.want {
				t.Errorf("ClampToWorldBounds(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
			if !sys.IsWithinBounds(got) {
				t.Errorf("clamped %+v reported out of bounds", got)
			}
		})
	}
}

func TestIsWithinBounds(t *testing.T) {
	sys, _ := newTestSystem(t)

	tests := []struct {
		in   WorldCoordinate
		want bool
	}{
		{WorldCoordinate{X: 0, Y: 0, Z: 0}, true},
		{WorldCoordinate{X: 1400, Y: 400, Z: 1200}, true},
		{WorldCoordinate{X: 1400.01, Y: 0, Z: 0}, false},
		{WorldCoordinate{X: 10, Y: -0.1, Z: 0}, false},
		{WorldCoordinate{X: 10, Y: 0, Z: 1201}, false},
		{WorldCoordinate{X: math.NaN(), Y: 0, Z: 0}, false},
		{WorldCoordinate{X: 10, Y: 0, Z: math.Inf(1)}, false},
	}

	for _, tt := range tests {
		if got := sys.IsWithinBounds(tt.in); got != tt.want {
			t.Errorf("IsWithinBounds(%+v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeCoordinate(t *testing.T) {
	sys, _ := newTestSystem(t)
	prev := WorldCoordinate{X: 300, Y: 20, Z: 500}

	got := sys.SanitizeCoordinate(WorldCoordinate{X: math.Inf(1), Y: math.NaN(), Z: 700}, prev)
	want := WorldCoordinate{X: 300, Y: 20, Z: 700}
	if got != want {
		t.Errorf("SanitizeCoordinate = %+v, want %+v", got, want)
	}

	// Finite but out of range values are clamped, not replaced
	got = sys.SanitizeCoordinate(WorldCoordinate{X: -50, Y: 0, Z: 1e6}, prev)
	want = WorldCoordinate{X: 0, Y: 0, Z: 1200}
	if got != want {
		t.Errorf("SanitizeCoordinate = %+v, want %+v", got, want)
	}

	// A non-finite previous value still yields a finite result
	got = sys.SanitizeCoordinate(WorldCoordinate{X: math.NaN()}, WorldCoordinate{X: math.NaN()})
	if !got.IsFinite() {
		t.Errorf("SanitizeCoordinate = %+v, want finite", got)
	}
}

// Package components defines ECS components for room furniture.
package components

import (
	"fmt"

	"github.com/google/uuid"
)

// Mount determines how a piece of furniture attaches to the room and which
// projection draws it.
type Mount uint8

const (
	MountFloor Mount = iota // stands on the floor, perspective scaled
	MountWall               // hangs on the back wall
	MountRug                // lies flat on the floor, world scale only
)

func (m Mount) String() string {
	switch m {
	case MountFloor:
		return "floor"
	case MountWall:
		return "wall"
	case MountRug:
		return "rug"
	default:
		return fmt.Sprintf("mount(%d)", uint8(m))
	}
}

// ParseMount converts a config name into a Mount.
func ParseMount(s string) (Mount, error) {
	switch s {
	case "floor":
		return MountFloor, nil
	case "wall":
		return MountWall, nil
	case "rug":
		return MountRug, nil
	}
	return 0, fmt.Errorf("unknown mount %q", s)
}

// Position represents an entity's world position.
type Position struct {
	X, Y, Z float64
}

// Footprint is the logical size of an entity in world units.
type Footprint struct {
	Width  float64 // along x
	Depth  float64 // along z
	Height float64 // along y
}

// Furniture identifies a piece of furniture.
type Furniture struct {
	ID    uuid.UUID
	Kind  string
	Mount Mount
}

package model

import (
	"fmt"
	"strings"
)

// Facing is one of the six axis-aligned directions. The numeric value is stable and is
// used as the block-event payload.
type Facing uint8

const (
	Down Facing = iota
	Up
	North
	South
	West
	East
)

// AllFacings lists every facing in index order.
var AllFacings = [6]Facing{Down, Up, North, South, West, East}

var facingVectors = [6]Vec3i{
	Down:  {X: 0, Y: -1, Z: 0},
	Up:    {X: 0, Y: 1, Z: 0},
	North: {X: 0, Y: 0, Z: -1},
	South: {X: 0, Y: 0, Z: 1},
	West:  {X: -1, Y: 0, Z: 0},
	East:  {X: 1, Y: 0, Z: 0},
}

var facingNames = [6]string{"down", "up", "north", "south", "west", "east"}

func (f Facing) Valid() bool { return f <= East }

func (f Facing) Index() int { return int(f) }

// Vector is the unit offset of f.
func (f Facing) Vector() Vec3i {
	if !f.Valid() {
		return Vec3i{}
	}
	return facingVectors[f]
}

func (f Facing) Opposite() Facing {
	// Facings come in pairs: (down,up), (north,south), (west,east).
	return f ^ 1
}

func (f Facing) String() string {
	if !f.Valid() {
		return fmt.Sprintf("facing(%d)", uint8(f))
	}
	return facingNames[f]
}

func FacingFromIndex(i int) (Facing, bool) {
	if i < 0 || i > int(East) {
		return 0, false
	}
	return Facing(i), true
}

func ParseFacing(s string) (Facing, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range facingNames {
		if n == s {
			return Facing(i), nil
		}
	}
	return 0, fmt.Errorf("unknown facing %q", s)
}

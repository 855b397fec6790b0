package pistonpower

import modelpkg "voxelmech.ai/internal/sim/world/kernel/model"

type Env interface {
	// IsSidePowered reports whether the block at pos emits power out of its face side.
	IsSidePowered(pos modelpkg.Vec3i, side modelpkg.Facing) bool
}

// Probe is one (position, face) pair consulted by ShouldExtend.
type Probe struct {
	Pos  modelpkg.Vec3i
	Face modelpkg.Facing
}

// SampledFaces lists, in evaluation order, every probe ShouldExtend consults for a
// piston at pos facing facing.
//
// The set is fixed: all six neighbors except the front (the block about to be pushed
// must not feed the piston), then the neighbors of the cell above except the piston
// itself below it.
func SampledFaces(pos modelpkg.Vec3i, facing modelpkg.Facing) []Probe {
	out := make([]Probe, 0, 10)
	for _, f := range modelpkg.AllFacings {
		if f == facing {
			continue
		}
		out = append(out, Probe{Pos: pos.Offset(f), Face: f})
	}
	above := pos.Offset(modelpkg.Up)
	for _, f := range modelpkg.AllFacings {
		if f == modelpkg.Down {
			continue
		}
		out = append(out, Probe{Pos: above.Offset(f), Face: f})
	}
	return out
}

// ShouldExtend reports whether any sampled face is powered.
func ShouldExtend(env Env, pos modelpkg.Vec3i, facing modelpkg.Facing) bool {
	for _, f := range modelpkg.AllFacings {
		if f != facing && env.IsSidePowered(pos.Offset(f), f) {
			return true
		}
	}
	above := pos.Offset(modelpkg.Up)
	for _, f := range modelpkg.AllFacings {
		if f != modelpkg.Down && env.IsSidePowered(above.Offset(f), f) {
			return true
		}
	}
	return false
}

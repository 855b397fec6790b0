package pushchain

import modelpkg "voxelmech.ai/internal/sim/world/kernel/model"

// MaxPushLength is the largest number of cells a single piston move may move or destroy.
const MaxPushLength = 12

type Env interface {
	Cell(pos modelpkg.Vec3i) modelpkg.Cell
	InBounds(pos modelpkg.Vec3i) bool
}

// MoveSet is the validator result. Both lists are ordered nearest-to-piston first.
type MoveSet struct {
	ToMove    []modelpkg.Vec3i
	ToDestroy []modelpkg.Vec3i
	CanMove   bool
}

func (m MoveSet) Len() int { return len(m.ToMove) + len(m.ToDestroy) }

// MoveDirection is the direction cells travel for a piston facing facing.
func MoveDirection(facing modelpkg.Facing, extending bool) modelpkg.Facing {
	if extending {
		return facing
	}
	return facing.Opposite()
}

// Validate walks the push line of the piston at pos and classifies every occupant.
//
// Extending walks from pos+facing along facing. Retracting (sticky pull) walks from
// pos+2*facing back toward the piston and stops at the vacated head cell.
func Validate(env Env, cls *Classifier, pos modelpkg.Vec3i, facing modelpkg.Facing, extending bool, limit int) MoveSet {
	if limit <= 0 {
		limit = MaxPushLength
	}
	dir := MoveDirection(facing, extending)
	cur := pos.Offset(facing)
	if !extending {
		cur = pos.OffsetN(facing, 2)
	}

	var out MoveSet
	for {
		if cur == pos {
			break
		}
		if !env.InBounds(cur) {
			return MoveSet{}
		}
		c := env.Cell(cur)
		if c.IsAnimating() {
			return MoveSet{}
		}
		if c.State.IsAir() {
			break
		}
		switch cls.Classify(c.State) {
		case modelpkg.PushNormal:
			out.ToMove = append(out.ToMove, cur)
		case modelpkg.PushDestroy:
			out.ToDestroy = append(out.ToDestroy, cur)
		default:
			return MoveSet{}
		}
		if out.Len() > limit {
			return MoveSet{}
		}
		cur = cur.Offset(dir)
	}
	out.CanMove = true
	return out
}

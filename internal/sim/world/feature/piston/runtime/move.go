package runtime

import (
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/pushchain"
)

// Commit performs one extend or retract of the piston at pos and plays its sound.
// It reports false, leaving the world untouched, when the structure cannot move.
func Commit(ops Ops, pos modelpkg.Vec3i, facing modelpkg.Facing, extending, sticky bool) bool {
	if !commit(&ops, pos, facing, extending, sticky) {
		return false
	}
	ops.playSound(pos, extending)
	return true
}

func commit(ops *Ops, pos modelpkg.Vec3i, facing modelpkg.Facing, extending, sticky bool) bool {
	head := pos.Offset(facing)
	if !extending && !ops.Cell(head).IsEmpty() {
		ops.clear(head)
	}

	set := pushchain.Validate(opsEnv{ops}, ops.Classifier, pos, facing, extending, ops.PushLimit)
	if !set.CanMove {
		ops.audit("MOVE_FAILED", pos, map[string]any{"facing": facing.String(), "extending": extending})
		return false
	}
	dir := pushchain.MoveDirection(facing, extending)

	destroyed := make([]string, len(set.ToDestroy))
	for i := len(set.ToDestroy) - 1; i >= 0; i-- {
		p := set.ToDestroy[i]
		st := ops.Cell(p).State
		destroyed[i] = st.ID
		if ops.DropFor != nil && ops.SpawnItemDrop != nil {
			if item, ok := ops.DropFor(st); ok {
				ops.SpawnItemDrop(p, item, 1)
			}
		}
		ops.clear(p)
		ops.audit("DESTROY", p, map[string]any{"block": st.String()})
	}

	moved := make([]string, len(set.ToMove))
	for i := len(set.ToMove) - 1; i >= 0; i-- {
		p := set.ToMove[i]
		st := ops.Cell(p).State
		moved[i] = st.ID
		ops.clear(p)
		ops.SetCell(p.Offset(dir), modelpkg.Animating(modelpkg.NewMovingPlaceholder(st, facing, extending, pos)))
	}

	if extending {
		hs := modelpkg.HeadState(ops.HeadID, facing, sticky)
		ops.SetCell(head, modelpkg.Animating(modelpkg.NewMovingPlaceholder(hs, facing, true, pos)))
	}

	base := ops.Cell(pos).State
	switch {
	case !extending:
		base = ops.retractBase(pos, base, facing)
	case !base.Bool(modelpkg.PropExtended):
		base = base.With(modelpkg.PropExtended, modelpkg.BoolValue(true))
		ops.SetCell(pos, modelpkg.Static(base))
	}

	for i := len(set.ToDestroy) - 1; i >= 0; i-- {
		ops.notify(set.ToDestroy[i], destroyed[i])
	}
	for i := len(set.ToMove) - 1; i >= 0; i-- {
		ops.notify(set.ToMove[i], moved[i])
	}
	headBlock := modelpkg.AirID
	switch {
	case extending:
		headBlock = ops.HeadID
	case len(moved) > 0:
		headBlock = moved[len(moved)-1]
	}
	ops.notify(head, headBlock)
	ops.notify(pos, base.ID)

	ops.audit("MOVE", pos, map[string]any{
		"facing":    facing.String(),
		"extending": extending,
		"moved":     len(set.ToMove),
		"destroyed": len(set.ToDestroy),
	})
	return true
}

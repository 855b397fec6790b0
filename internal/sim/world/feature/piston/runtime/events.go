package runtime

import (
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/blockevents"
	"voxelmech.ai/internal/sim/world/logic/pistonpower"
	"voxelmech.ai/internal/sim/world/logic/pushchain"
)

// CheckForMove samples power for the piston at pos and queues an extend or retract event
// when the sampled power disagrees with its extended flag. Extend is queued only when the
// structure in front can currently move.
func CheckForMove(ops Ops, pos modelpkg.Vec3i, state modelpkg.BlockState, sticky bool) bool {
	rec, ok := modelpkg.ReadPiston(state, sticky)
	if !ok || ops.EnqueueBlockEvent == nil {
		return false
	}
	powered := pistonpower.ShouldExtend(opsEnv{&ops}, pos, rec.Facing)
	switch {
	case powered && !rec.Extended:
		set := pushchain.Validate(opsEnv{&ops}, ops.Classifier, pos, rec.Facing, true, ops.PushLimit)
		if !set.CanMove {
			return false
		}
		return ops.EnqueueBlockEvent(pos, state.ID, blockevents.CodeExtend, rec.Facing.Index())
	case !powered && rec.Extended:
		return ops.EnqueueBlockEvent(pos, state.ID, blockevents.CodeRetract, rec.Facing.Index())
	}
	return false
}

// HandleEvent executes a queued piston event against the current state at pos.
// Power is sampled again so that stale events are dropped.
func HandleEvent(ops Ops, pos modelpkg.Vec3i, state modelpkg.BlockState, sticky bool, code, param int) bool {
	rec, ok := modelpkg.ReadPiston(state, sticky)
	if !ok {
		return false
	}
	powered := pistonpower.ShouldExtend(opsEnv{&ops}, pos, rec.Facing)
	if powered && code == blockevents.CodeRetract {
		if !rec.Extended {
			ops.SetCell(pos, modelpkg.Static(state.With(modelpkg.PropExtended, modelpkg.BoolValue(true))))
		}
		return false
	}
	if !powered && code == blockevents.CodeExtend {
		return false
	}
	if code == blockevents.CodeRetract && !rec.Extended {
		return false
	}

	switch code {
	case blockevents.CodeExtend:
		return Commit(ops, pos, rec.Facing, true, sticky)
	case blockevents.CodeRetract:
		retract(&ops, pos, state, rec)
		return true
	}
	return false
}

func retract(ops *Ops, pos modelpkg.Vec3i, state modelpkg.BlockState, rec modelpkg.PistonRecord) {
	head := pos.Offset(rec.Facing)
	ops.finishAt(head)
	ops.clear(head)

	pulled := false
	if rec.Sticky {
		far := pos.OffsetN(rec.Facing, 2)
		fc := ops.Cell(far)
		switch {
		case fc.IsAnimating():
			if fc.Moving.Extending && fc.Moving.Facing == rec.Facing {
				landed, _ := ops.finishAt(far)
				ops.notify(far, landed.ID)
			}
		case ops.Classifier.Pullable(fc.State):
			pulled = commit(ops, pos, rec.Facing, false, true)
		}
	}
	if !pulled {
		ops.retractBase(pos, state, rec.Facing)
		ops.notify(head, modelpkg.AirID)
		ops.notify(pos, state.ID)
	}
	ops.playSound(pos, false)
}

package runtime

import modelpkg "voxelmech.ai/internal/sim/world/kernel/model"

// BaseBroken removes the head of an extended piston whose base at pos was just broken.
func BaseBroken(ops Ops, pos modelpkg.Vec3i, state modelpkg.BlockState) bool {
	f, ok := state.Facing(modelpkg.PropFacing)
	if !ok || !state.Bool(modelpkg.PropExtended) {
		return false
	}
	head := pos.Offset(f)
	c := ops.Cell(head)
	st := c.State
	if c.IsAnimating() {
		st = c.Moving.State
	}
	if st.ID != ops.HeadID {
		return false
	}
	if hf, ok := st.Facing(modelpkg.PropFacing); !ok || hf != f {
		return false
	}
	ops.clear(head)
	ops.audit("DESTROY", head, map[string]any{"block": st.String(), "reason": "base_broken"})
	ops.notify(head, st.ID)
	return true
}

// HeadBroken removes the extended base behind a broken head and drops its item.
func HeadBroken(ops Ops, headPos modelpkg.Vec3i, head modelpkg.BlockState) bool {
	f, ok := head.Facing(modelpkg.PropFacing)
	if !ok {
		return false
	}
	pos := headPos.Offset(f.Opposite())
	c := ops.Cell(pos)
	if c.IsAnimating() {
		return false
	}
	base := c.State
	t, ok := ops.Classifier.Traits(base.ID)
	if !ok || !t.Piston || !base.Bool(modelpkg.PropExtended) {
		return false
	}
	if bf, ok := base.Facing(modelpkg.PropFacing); !ok || bf != f {
		return false
	}
	if ops.DropFor != nil && ops.SpawnItemDrop != nil {
		if item, ok := ops.DropFor(base); ok {
			ops.SpawnItemDrop(pos, item, 1)
		}
	}
	ops.clear(pos)
	ops.audit("DESTROY", pos, map[string]any{"block": base.String(), "reason": "head_broken"})
	ops.notify(pos, base.ID)
	return true
}

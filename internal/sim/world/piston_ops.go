package world

import (
	pistonrt "voxelmech.ai/internal/sim/world/feature/piston/runtime"
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

func (w *World) pistonOps() pistonrt.Ops {
	return pistonrt.Ops{
		Cell: w.chunks.Cell,
		SetCell: func(pos modelpkg.Vec3i, c modelpkg.Cell) {
			w.SetCell(pos, c, FlagSync)
		},
		InBounds:          w.chunks.InBounds,
		IsSidePowered:     w.IsSidePowered,
		EnqueueBlockEvent: w.EnqueueBlockEvent,
		NotifyNeighbors:   w.notifyAround,
		DropFor:           w.dropFor,
		SpawnItemDrop: func(pos modelpkg.Vec3i, item string, count int) {
			w.SpawnItemDrop(pos, item, count)
		},
		PlaySound:  w.PlaySound,
		Rand:       w.soundRand,
		AuditEvent: w.pistonAudit,
		Classifier: w.classifier,
		HeadID:     w.headID,
		PushLimit:  w.cfg.PushLimit,
	}
}

func (w *World) checkPiston(pos Vec3i, st BlockState) {
	pistonrt.CheckForMove(w.pistonOps(), pos, st, w.isSticky(st.ID))
}

func (w *World) pistonAudit(action string, pos modelpkg.Vec3i, details map[string]any) {
	switch action {
	case "MOVE":
		w.moves++
		rec := MoveRecord{Pos: pos.ToArray()}
		rec.Facing, _ = details["facing"].(string)
		rec.Extending, _ = details["extending"].(bool)
		rec.Moved, _ = details["moved"].(int)
		rec.Destroyed, _ = details["destroyed"].(int)
		w.tickMoves = append(w.tickMoves, rec)
	case "MOVE_FAILED":
		w.moveFailed++
	}
	w.auditEvent("PISTON", action, pos, "", details)
}

package world

import (
	"voxelmech.ai/internal/sim/catalogs"
	pistonrt "voxelmech.ai/internal/sim/world/feature/piston/runtime"
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

// behavior is the callback row for one block kind. Nil entries mean "inert".
type behavior struct {
	placeable bool

	onAdded     func(w *World, pos Vec3i, st BlockState)
	onNeighbor  func(w *World, pos Vec3i, st BlockState, from Vec3i)
	onEvent     func(w *World, pos Vec3i, st BlockState, code, param int) bool
	onBroken    func(w *World, pos Vec3i, st BlockState)
	onScheduled func(w *World, pos Vec3i, st BlockState)
	onUse       func(w *World, pos Vec3i, st BlockState) bool
	powered     func(st BlockState, side Facing) bool

	// normalize fills defaults on placement and reports whether st is acceptable.
	normalize func(st BlockState) (BlockState, bool)
}

func defaultBehaviors() map[string]behavior {
	return map[string]behavior{
		catalogs.KindAir:       {},
		catalogs.KindSolid:     {placeable: true},
		catalogs.KindPlant:     {placeable: true},
		catalogs.KindContainer: {placeable: true},
		catalogs.KindPiston: {
			placeable:  true,
			normalize:  normalizePiston,
			onAdded:    func(w *World, pos Vec3i, st BlockState) { w.checkPiston(pos, st) },
			onNeighbor: func(w *World, pos Vec3i, st BlockState, _ Vec3i) { w.checkPiston(pos, st) },
			onEvent: func(w *World, pos Vec3i, st BlockState, code, param int) bool {
				return pistonrt.HandleEvent(w.pistonOps(), pos, st, w.isSticky(st.ID), code, param)
			},
			onBroken: func(w *World, pos Vec3i, st BlockState) {
				pistonrt.BaseBroken(w.pistonOps(), pos, st)
			},
		},
		catalogs.KindPistonHead: {
			onBroken: func(w *World, pos Vec3i, st BlockState) {
				pistonrt.HeadBroken(w.pistonOps(), pos, st)
			},
		},
		catalogs.KindMoving: {},
		catalogs.KindPowerBlock: {
			placeable: true,
			powered:   func(BlockState, Facing) bool { return true },
		},
		catalogs.KindLever: {
			placeable: true,
			normalize: normalizeSwitch,
			powered:   poweredProp,
			onUse: func(w *World, pos Vec3i, st BlockState) bool {
				on := !st.Bool(modelpkg.PropPowered)
				return w.SetBlockState(pos, st.With(modelpkg.PropPowered, modelpkg.BoolValue(on)), FlagNotify|FlagSync)
			},
		},
		catalogs.KindButton: {
			placeable: true,
			normalize: normalizeSwitch,
			powered:   poweredProp,
			onUse: func(w *World, pos Vec3i, st BlockState) bool {
				if st.Bool(modelpkg.PropPowered) {
					return true
				}
				if !w.SetBlockState(pos, st.With(modelpkg.PropPowered, modelpkg.BoolValue(true)), FlagNotify|FlagSync) {
					return false
				}
				w.ScheduleUpdate(pos, st.ID, w.cfg.ButtonPressTicks)
				return true
			},
			onScheduled: func(w *World, pos Vec3i, st BlockState) {
				if st.Bool(modelpkg.PropPowered) {
					w.SetBlockState(pos, st.With(modelpkg.PropPowered, modelpkg.BoolValue(false)), FlagNotify|FlagSync)
				}
			},
		},
	}
}

func poweredProp(st BlockState, _ Facing) bool { return st.Bool(modelpkg.PropPowered) }

func normalizePiston(st BlockState) (BlockState, bool) {
	if _, ok := st.Facing(modelpkg.PropFacing); !ok {
		return st, false
	}
	return st.With(modelpkg.PropExtended, modelpkg.BoolValue(false)), true
}

func normalizeSwitch(st BlockState) (BlockState, bool) {
	if _, ok := st.Get(modelpkg.PropPowered); !ok {
		st = st.With(modelpkg.PropPowered, modelpkg.BoolValue(false))
	}
	return st, true
}

package runtime

import (
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/pushchain"
)

// Sound names played at the piston base.
const (
	SoundExtend  = "piston.out"
	SoundRetract = "piston.in"
	SoundVolume  = 0.5
)

// Ops is the world-facing callback set used by the piston runtime.
// Mutations stay in the caller (world facade); this package owns the move decision
// flow and the order in which cells are written and neighbors notified.
type Ops struct {
	Cell     func(pos modelpkg.Vec3i) modelpkg.Cell
	SetCell  func(pos modelpkg.Vec3i, c modelpkg.Cell)
	InBounds func(pos modelpkg.Vec3i) bool

	IsSidePowered     func(pos modelpkg.Vec3i, side modelpkg.Facing) bool
	EnqueueBlockEvent func(pos modelpkg.Vec3i, block string, code, param int) bool
	NotifyNeighbors   func(pos modelpkg.Vec3i, block string)

	DropFor       func(s modelpkg.BlockState) (item string, ok bool)
	SpawnItemDrop func(pos modelpkg.Vec3i, item string, count int)
	PlaySound     func(pos modelpkg.Vec3i, sound string, volume, pitch float64)
	// Rand returns a value in [0,1) for pitch jitter at pos.
	Rand func(pos modelpkg.Vec3i) float64

	AuditEvent func(action string, pos modelpkg.Vec3i, details map[string]any)

	Classifier *pushchain.Classifier
	HeadID     string
	PushLimit  int
}

type opsEnv struct{ ops *Ops }

func (e opsEnv) Cell(pos modelpkg.Vec3i) modelpkg.Cell { return e.ops.Cell(pos) }

func (e opsEnv) InBounds(pos modelpkg.Vec3i) bool {
	if e.ops.InBounds == nil {
		return true
	}
	return e.ops.InBounds(pos)
}

func (e opsEnv) IsSidePowered(pos modelpkg.Vec3i, side modelpkg.Facing) bool {
	if e.ops.IsSidePowered == nil {
		return false
	}
	return e.ops.IsSidePowered(pos, side)
}

func (o *Ops) notify(pos modelpkg.Vec3i, block string) {
	if o.NotifyNeighbors != nil {
		o.NotifyNeighbors(pos, block)
	}
}

func (o *Ops) audit(action string, pos modelpkg.Vec3i, details map[string]any) {
	if o.AuditEvent != nil {
		o.AuditEvent(action, pos, details)
	}
}

func (o *Ops) rand(pos modelpkg.Vec3i) float64 {
	if o.Rand == nil {
		return 0
	}
	return o.Rand(pos)
}

func (o *Ops) playSound(pos modelpkg.Vec3i, extending bool) {
	if o.PlaySound == nil {
		return
	}
	if extending {
		o.PlaySound(pos, SoundExtend, SoundVolume, 0.6+o.rand(pos)*0.25)
		return
	}
	o.PlaySound(pos, SoundRetract, SoundVolume, 0.6+o.rand(pos)*0.15)
}

func (o *Ops) clear(pos modelpkg.Vec3i) {
	o.SetCell(pos, modelpkg.Static(modelpkg.Air))
}

// retractBase swaps the extended base at pos for a retracting placeholder that lands as
// the retracted piston.
func (o *Ops) retractBase(pos modelpkg.Vec3i, st modelpkg.BlockState, facing modelpkg.Facing) modelpkg.BlockState {
	base := st.With(modelpkg.PropExtended, modelpkg.BoolValue(false))
	m := modelpkg.NewMovingPlaceholder(base, facing, false, pos)
	m.Head = true
	o.SetCell(pos, modelpkg.Animating(m))
	return base
}

// finishAt lands an in-flight placeholder at pos immediately.
func (o *Ops) finishAt(pos modelpkg.Vec3i) (modelpkg.BlockState, bool) {
	c := o.Cell(pos)
	if !c.IsAnimating() {
		return c.State, false
	}
	c.Moving.Finish()
	landed := c.Collapse()
	o.SetCell(pos, landed)
	return landed.State, true
}

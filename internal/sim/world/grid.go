package world

import (
	"sort"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/blockevents"
	"voxelmech.ai/internal/sim/world/logic/mathx"
)

func (w *World) InBounds(pos Vec3i) bool { return w.chunks.InBounds(pos) }

// Cell returns the raw cell at pos, placeholder included.
func (w *World) Cell(pos Vec3i) Cell { return w.chunks.Cell(pos) }

// GetBlockState returns the block at pos. An animating cell reads as the moving block
// facing the placeholder's direction.
func (w *World) GetBlockState(pos Vec3i) BlockState {
	c := w.chunks.Cell(pos)
	if c.IsAnimating() {
		return modelpkg.NewBlockState(w.movingID, modelpkg.Property{
			Name:  modelpkg.PropFacing,
			Value: modelpkg.FacingValue(c.Moving.Facing),
		})
	}
	return c.State
}

// SetCell writes c at pos without running block callbacks.
func (w *World) SetCell(pos Vec3i, c Cell, flags int) bool {
	if !w.chunks.SetCell(pos, c) {
		return false
	}
	if c.Moving != nil {
		w.movingSeq[pos] = w.nextSeq
		w.nextSeq++
	} else {
		delete(w.movingSeq, pos)
	}
	if flags&FlagSync != 0 && flags&FlagNoRerender == 0 {
		w.tickChanged[pos] = struct{}{}
	}
	if flags&FlagNotify != 0 {
		w.notifyAround(pos, cellBlockID(c))
	}
	return true
}

// SetBlockState writes a static state at pos. A changed block id runs the new block's
// added callback before neighbors are notified.
func (w *World) SetBlockState(pos Vec3i, st BlockState, flags int) bool {
	old := w.GetBlockState(pos)
	if !w.SetCell(pos, modelpkg.Static(st), flags&^FlagNotify) {
		return false
	}
	if old.ID != st.ID {
		if b := w.behaviorFor(st.ID); b.onAdded != nil {
			b.onAdded(w, pos, st)
		}
	}
	if flags&FlagNotify != 0 {
		wide := w.isPowerSource(old.ID) || w.isPowerSource(st.ID)
		w.notify(pos, st.ID, wide)
	}
	return true
}

func cellBlockID(c Cell) string {
	if c.IsAnimating() {
		return c.Moving.State.ID
	}
	if c.State.IsAir() {
		return modelpkg.AirID
	}
	return c.State.ID
}

// NotifyNeighbors runs the neighbor-changed callback of the six blocks around pos.
func (w *World) NotifyNeighbors(pos Vec3i, block string) {
	for _, f := range modelpkg.AllFacings {
		n := pos.Offset(f)
		if !w.chunks.InBounds(n) {
			continue
		}
		c := w.chunks.Cell(n)
		if c.IsAnimating() || c.State.IsAir() {
			continue
		}
		if b := w.behaviorFor(c.State.ID); b.onNeighbor != nil {
			b.onNeighbor(w, n, c.State, pos)
		}
	}
}

// notifyAround notifies neighbors of pos, widening to the second ring when block is a
// power source. Pistons sample the cell above them, which sits two steps from a source.
func (w *World) notifyAround(pos Vec3i, block string) {
	w.notify(pos, block, w.isPowerSource(block))
}

func (w *World) notify(pos Vec3i, block string, wide bool) {
	w.NotifyNeighbors(pos, block)
	if !wide {
		return
	}
	for _, f := range modelpkg.AllFacings {
		n := pos.Offset(f)
		if w.chunks.InBounds(n) {
			w.NotifyNeighbors(n, block)
		}
	}
}

func (w *World) isPowerSource(id string) bool {
	return w.behaviorFor(id).powered != nil
}

// IsSidePowered reports whether the block at pos emits power toward side.
func (w *World) IsSidePowered(pos Vec3i, side Facing) bool {
	c := w.chunks.Cell(pos)
	if c.IsAnimating() {
		return false
	}
	b := w.behaviorFor(c.State.ID)
	return b.powered != nil && b.powered(c.State, side)
}

// ScheduleUpdate runs the scheduled callback of block at pos after delay ticks.
func (w *World) ScheduleUpdate(pos Vec3i, block string, delay int) {
	if delay < 1 {
		delay = 1
	}
	w.scheduled = append(w.scheduled, scheduledUpdate{
		Pos:     pos,
		Block:   block,
		DueTick: w.tick.Load() + uint64(delay),
		Seq:     w.nextSeq,
	})
	w.nextSeq++
}

func (w *World) runScheduled(nowTick uint64) {
	if len(w.scheduled) == 0 {
		return
	}
	sortScheduled(w.scheduled)
	n := 0
	for n < len(w.scheduled) && w.scheduled[n].DueTick <= nowTick {
		n++
	}
	due := append([]scheduledUpdate(nil), w.scheduled[:n]...)
	w.scheduled = append(w.scheduled[:0], w.scheduled[n:]...)
	for _, u := range due {
		st := w.GetBlockState(u.Pos)
		if st.ID != u.Block {
			continue
		}
		if b := w.behaviorFor(st.ID); b.onScheduled != nil {
			b.onScheduled(w, u.Pos, st)
		}
	}
}

func sortScheduled(s []scheduledUpdate) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].DueTick != s[j].DueTick {
			return s[i].DueTick < s[j].DueTick
		}
		return s[i].Seq < s[j].Seq
	})
}

func (w *World) EnqueueBlockEvent(pos Vec3i, block string, code, param int) bool {
	return w.events.Enqueue(blockevents.Event{Pos: pos, Block: block, Code: code, Param: param})
}

// drainBlockEvents dispatches queued events to the block currently at each position.
// Events addressed to a block that has since been replaced are dropped.
func (w *World) drainBlockEvents() int {
	return w.events.Drain(w.cfg.MaxBlockEventsPerTick, func(e blockevents.Event) {
		st := w.GetBlockState(e.Pos)
		if st.ID != e.Block {
			return
		}
		if b := w.behaviorFor(st.ID); b.onEvent != nil {
			b.onEvent(w, e.Pos, st, e.Code, e.Param)
		}
	})
}

func (w *World) SpawnItemDrop(pos Vec3i, item string, count int) string {
	return w.drops.Spawn(w.tick.Load(), pos, item, count, w.auditFn("WORLD"))
}

func (w *World) PlaySound(pos Vec3i, sound string, volume, pitch float64) {
	rec := SoundRecord{Pos: pos.ToArray(), Sound: sound, Volume: volume, Pitch: pitch}
	w.tickSounds = append(w.tickSounds, rec)
	w.auditEvent("WORLD", "SOUND", pos, "", map[string]any{"sound": sound, "volume": volume, "pitch": pitch})
}

// soundRand is a deterministic [0,1) value for pos at the current tick.
func (w *World) soundRand(pos Vec3i) float64 {
	seed := w.cfg.Seed ^ int64(w.tick.Load()*0x9e3779b97f4a7c15)
	return mathx.Unit(mathx.Hash3(seed, pos.X, pos.Y, pos.Z))
}

package world

import (
	"sort"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

// movingOrder lists placeholder positions in installation order.
func (w *World) movingOrder() []Vec3i {
	out := make([]Vec3i, 0, len(w.movingSeq))
	for p := range w.movingSeq {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return w.movingSeq[out[i]] < w.movingSeq[out[j]] })
	return out
}

// tickPlaceholders advances every placeholder once and resolves those that reached their
// terminal progress in the same tick.
func (w *World) tickPlaceholders() int {
	resolved := 0
	for _, p := range w.movingOrder() {
		c := w.chunks.Cell(p)
		if !c.IsAnimating() {
			delete(w.movingSeq, p)
			continue
		}
		if !c.Moving.Tick(w.cfg.PlaceholderStep) {
			continue
		}
		w.resolvePlaceholder(p, c.Moving)
		resolved++
	}
	return resolved
}

// resolvePlaceholder lands m at pos, then lets the landed block and its neighbors react.
func (w *World) resolvePlaceholder(pos Vec3i, m *MovingPlaceholder) BlockState {
	st := m.Resolve()
	w.SetCell(pos, modelpkg.Static(st), FlagSync)
	if b := w.behaviorFor(st.ID); b.onNeighbor != nil {
		b.onNeighbor(w, pos, st, pos)
	}
	w.notifyAround(pos, cellBlockID(modelpkg.Static(st)))
	return st
}

// finishPlaceholder jumps the placeholder at pos to its end state and resolves it.
func (w *World) finishPlaceholder(pos Vec3i) (BlockState, bool) {
	c := w.chunks.Cell(pos)
	if !c.IsAnimating() {
		return c.State, false
	}
	c.Moving.Finish()
	return w.resolvePlaceholder(pos, c.Moving), true
}

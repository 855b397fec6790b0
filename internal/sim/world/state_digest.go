package world

import (
	"voxelmech.ai/internal/sim/world/feature/persistence/digest"
	storepkg "voxelmech.ai/internal/sim/world/terrain/store"
)

func (w *World) stateDigest(nowTick uint64) string {
	moving := make([]digest.MovingEntry, 0, len(w.movingSeq))
	for _, p := range w.movingOrder() {
		if c := w.chunks.Cell(p); c.IsAnimating() {
			moving = append(moving, digest.MovingEntry{Pos: p, P: c.Moving})
		}
	}
	scheduled := make([]digest.ScheduledEntry, 0, len(w.scheduled))
	for _, u := range w.sortedScheduled() {
		scheduled = append(scheduled, digest.ScheduledEntry{Pos: u.Pos, Block: u.Block, DueTick: u.DueTick})
	}
	drops := make([]*ItemDrop, 0, len(w.drops.ByID))
	for _, id := range w.drops.SortedIDs() {
		drops = append(drops, w.drops.ByID[id])
	}
	return digest.StateDigest(digest.StateInput{
		NowTick:     nowTick,
		Seed:        w.cfg.Seed,
		Palette:     w.chunks.Palette(),
		ChunkKeys:   w.chunks.LoadedChunkKeys(),
		ChunkDigest: func(k storepkg.ChunkKey) [32]byte { return w.chunks.Chunks[k].Digest() },
		Moving:      moving,
		BlockEvents: w.events.Pending(),
		Scheduled:   scheduled,
		Drops:       drops,
	})
}

// StateDigest is the digest of the current state at the current tick.
func (w *World) StateDigest() string { return w.stateDigest(w.tick.Load()) }

func (w *World) sortedScheduled() []scheduledUpdate {
	out := append([]scheduledUpdate(nil), w.scheduled...)
	sortScheduled(out)
	return out
}

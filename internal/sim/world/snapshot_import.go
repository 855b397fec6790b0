package world

import (
	"fmt"

	"voxelmech.ai/internal/persistence/snapshot"
	"voxelmech.ai/internal/sim/world/feature/entities/items"
	"voxelmech.ai/internal/sim/world/io/snapshotcodec"
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/blockevents"
	storepkg "voxelmech.ai/internal/sim/world/terrain/store"
)

// ImportSnapshot replaces the current in-memory world state with the snapshot.
// It sets the world's tick to snapshotTick+1 (the next tick to simulate).
//
// This must be called only when the world is stopped or from the world loop goroutine.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version: %d", s.Header.Version)
	}
	if w.cfg.Seed != s.Seed {
		return fmt.Errorf("snapshot seed mismatch: cfg=%d snap=%d", w.cfg.Seed, s.Seed)
	}
	if w.cfg.Height != s.Height {
		return fmt.Errorf("snapshot height mismatch: cfg=%d snap=%d", w.cfg.Height, s.Height)
	}
	if w.cfg.BoundaryR != s.BoundaryR {
		return fmt.Errorf("snapshot boundary_r mismatch: cfg=%d snap=%d", w.cfg.BoundaryR, s.BoundaryR)
	}
	if s.BlocksDigest != "" && s.BlocksDigest != w.catalogs.Blocks.DefsDigest {
		w.logger.Printf("snapshot blocks digest differs from loaded catalog")
	}

	// Operational parameters: snapshot is authoritative when present.
	if s.PushLimit > 0 {
		w.cfg.PushLimit = s.PushLimit
	}
	if s.PlaceholderStep > 0 {
		w.cfg.PlaceholderStep = s.PlaceholderStep
	}
	if s.MaxBlockEventsPerTick > 0 {
		w.cfg.MaxBlockEventsPerTick = s.MaxBlockEventsPerTick
	}
	if s.ButtonPressTicks > 0 {
		w.cfg.ButtonPressTicks = s.ButtonPressTicks
	}
	if s.SnapshotEveryTicks > 0 {
		w.cfg.SnapshotEveryTicks = s.SnapshotEveryTicks
	}

	palette, err := snapshotcodec.DecodePalette(s.Palette)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	for _, st := range palette {
		if st.IsAir() {
			continue
		}
		if _, ok := w.blockDef(st.ID); !ok {
			return fmt.Errorf("snapshot: unknown block %s", st.ID)
		}
	}

	chunks := storepkg.NewChunkStore(w.cfg.Height, w.cfg.BoundaryR)
	if err := chunks.RestorePalette(palette); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	for _, c := range s.Chunks {
		if c.Height != w.cfg.Height || len(c.Blocks) != storepkg.ChunkSize*storepkg.ChunkSize*c.Height {
			return fmt.Errorf("snapshot: chunk %d,%d has bad shape", c.CX, c.CZ)
		}
		for _, id := range c.Blocks {
			if int(id) >= len(palette) {
				return fmt.Errorf("snapshot: chunk %d,%d references palette id %d", c.CX, c.CZ, id)
			}
		}
		chunks.RestoreChunk(c.CX, c.CZ, c.Blocks)
	}

	movingSeq := map[Vec3i]uint64{}
	for _, mv := range s.Moving {
		pos, m, err := snapshotcodec.DecodeMoving(mv)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		if !chunks.SetCell(pos, modelpkg.Animating(m)) {
			return fmt.Errorf("snapshot: placeholder out of bounds at %v", mv.Pos)
		}
		movingSeq[pos] = mv.Seq
	}

	drops := items.NewDrops(uint64(w.cfg.DropTTLTicks))
	for _, d := range s.Drops {
		drops.Restore(modelpkg.ItemDrop{
			DropID:      d.ID,
			Pos:         modelpkg.Vec3iFromArray(d.Pos),
			Item:        d.Item,
			Count:       d.Count,
			CreatedTick: d.CreatedTick,
			ExpiresTick: d.ExpiresTick,
		})
	}
	if s.Counters.NextDrop > 0 {
		drops.NextID = s.Counters.NextDrop
	}

	scheduled := make([]scheduledUpdate, 0, len(s.Scheduled))
	for _, u := range s.Scheduled {
		scheduled = append(scheduled, scheduledUpdate{Pos: modelpkg.Vec3iFromArray(u.Pos), Block: u.Block, DueTick: u.DueTick, Seq: u.Seq})
	}

	events := blockevents.NewQueue()
	events.Restore(snapshotcodec.DecodeEvents(s.BlockEvents))

	w.chunks = chunks
	w.movingSeq = movingSeq
	w.drops = drops
	w.scheduled = scheduled
	w.events = events
	w.nextSeq = s.Counters.NextSeq
	if w.nextSeq == 0 {
		w.nextSeq = 1
	}
	w.moves = s.Counters.Moves
	w.moveFailed = s.Counters.MoveFailed
	w.tick.Store(s.Header.Tick + 1)
	return nil
}

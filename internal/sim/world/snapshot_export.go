package world

import (
	"voxelmech.ai/internal/persistence/snapshot"
	"voxelmech.ai/internal/sim/world/io/snapshotcodec"
)

// ExportSnapshot captures the full sim state as of the end of nowTick.
func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	s := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    nowTick,
		},
		Seed:                  w.cfg.Seed,
		TickRate:              w.cfg.TickRateHz,
		Height:                w.cfg.Height,
		BoundaryR:             w.cfg.BoundaryR,
		PushLimit:             w.cfg.PushLimit,
		PlaceholderStep:       w.cfg.PlaceholderStep,
		MaxBlockEventsPerTick: w.cfg.MaxBlockEventsPerTick,
		ButtonPressTicks:      w.cfg.ButtonPressTicks,
		SnapshotEveryTicks:    w.cfg.SnapshotEveryTicks,
		BlocksDigest:          w.catalogs.Blocks.DefsDigest,
		Palette:               snapshotcodec.EncodePalette(w.chunks.Palette()),
		BlockEvents:           snapshotcodec.EncodeEvents(w.events.Pending()),
		Counters: snapshot.CountersV1{
			NextDrop:   w.drops.NextID,
			NextSeq:    w.nextSeq,
			Moves:      w.moves,
			MoveFailed: w.moveFailed,
		},
	}

	for _, k := range w.chunks.LoadedChunkKeys() {
		ch := w.chunks.Chunks[k]
		blocks := make([]uint16, len(ch.Blocks))
		copy(blocks, ch.Blocks)
		s.Chunks = append(s.Chunks, snapshot.ChunkV1{CX: k.CX, CZ: k.CZ, Height: ch.Height, Blocks: blocks})
	}
	for _, p := range w.movingOrder() {
		c := w.chunks.Cell(p)
		if !c.IsAnimating() {
			continue
		}
		s.Moving = append(s.Moving, snapshotcodec.EncodeMoving(p, c.Moving, w.movingSeq[p]))
	}
	for _, u := range w.sortedScheduled() {
		s.Scheduled = append(s.Scheduled, snapshot.ScheduledV1{Pos: u.Pos.ToArray(), Block: u.Block, DueTick: u.DueTick, Seq: u.Seq})
	}
	for _, id := range w.drops.SortedIDs() {
		d := w.drops.ByID[id]
		s.Drops = append(s.Drops, snapshot.DropV1{
			ID:          d.DropID,
			Pos:         d.Pos.ToArray(),
			Item:        d.Item,
			Count:       d.Count,
			CreatedTick: d.CreatedTick,
			ExpiresTick: d.ExpiresTick,
		})
	}
	return s
}

package world

import "context"

type CellView struct {
	Pos      [3]int      `json:"pos"`
	InBounds bool        `json:"in_bounds"`
	State    string      `json:"state"`
	Moving   *MovingView `json:"moving,omitempty"`
}

type Summary struct {
	WorldID       string `json:"world_id"`
	Tick          uint64 `json:"tick"`
	TickRateHz    int    `json:"tick_rate_hz"`
	Height        int    `json:"height"`
	BoundaryR     int    `json:"boundary_r"`
	Chunks        int    `json:"chunks"`
	Moving        int    `json:"moving"`
	PendingEvents int    `json:"pending_events"`
	Scheduled     int    `json:"scheduled"`
	Drops         int    `json:"drops"`
	Moves         uint64 `json:"moves"`
	MoveFailed    uint64 `json:"move_failed"`
	Observers     int    `json:"observers"`
	Digest        string `json:"digest,omitempty"`
}

type cellReq struct {
	Pos  Vec3i
	Resp chan CellView
}

type summaryReq struct {
	Resp chan Summary
}

func (w *World) CellView(pos Vec3i) CellView {
	v := CellView{Pos: pos.ToArray(), InBounds: w.chunks.InBounds(pos)}
	c := w.chunks.Cell(pos)
	v.State = w.GetBlockState(pos).String()
	if c.IsAnimating() {
		mv := movingView(pos, c.Moving)
		v.Moving = &mv
	}
	return v
}

func (w *World) Summary() Summary {
	return Summary{
		WorldID:       w.cfg.ID,
		Tick:          w.tick.Load(),
		TickRateHz:    w.cfg.TickRateHz,
		Height:        w.cfg.Height,
		BoundaryR:     w.cfg.BoundaryR,
		Chunks:        len(w.chunks.Chunks),
		Moving:        len(w.movingSeq),
		PendingEvents: w.events.Len(),
		Scheduled:     len(w.scheduled),
		Drops:         len(w.drops.ByID),
		Moves:         w.moves,
		MoveFailed:    w.moveFailed,
		Observers:     len(w.observers),
		Digest:        w.lastDigest,
	}
}

// QueryCell asks the running world loop for the cell at pos.
func (w *World) QueryCell(ctx context.Context, pos Vec3i) (CellView, error) {
	resp := make(chan CellView, 1)
	select {
	case w.cellReq <- cellReq{Pos: pos, Resp: resp}:
	case <-ctx.Done():
		return CellView{}, ctx.Err()
	}
	select {
	case v := <-resp:
		return v, nil
	case <-ctx.Done():
		return CellView{}, ctx.Err()
	}
}

// QuerySummary asks the running world loop for counters.
func (w *World) QuerySummary(ctx context.Context) (Summary, error) {
	resp := make(chan Summary, 1)
	select {
	case w.summaryReq <- summaryReq{Resp: resp}:
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
	select {
	case s := <-resp:
		return s, nil
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
}

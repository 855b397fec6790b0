package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingActions []ActionEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case req := <-w.cellReq:
			req.Resp <- w.CellView(req.Pos)
		case req := <-w.summaryReq:
			req.Resp <- w.Summary()
		case env := <-w.inbox:
			pendingActions = append(pendingActions, env)
		case <-ticker.C:
			w.step(pendingActions)
			pendingActions = pendingActions[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce(actions []ActionEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.step(actions)
	return tick, w.lastDigest
}

// step runs one tick: actions, scheduled updates, block events, placeholders, then
// logging, observers and the periodic snapshot.
func (w *World) step(actions []ActionEnvelope) {
	nowTick := w.tick.Load()
	w.tickResults = w.tickResults[:0]
	w.tickMoves = w.tickMoves[:0]
	w.tickSounds = w.tickSounds[:0]
	for p := range w.tickChanged {
		delete(w.tickChanged, p)
	}

	recorded := w.applyActions(actions)
	w.runScheduled(nowTick)
	w.drainBlockEvents()
	w.tickPlaceholders()
	w.drops.CleanupExpired(nowTick, w.auditFn("WORLD"))

	digest := w.stateDigest(nowTick)
	w.lastDigest = digest

	entry := TickLogEntry{
		Tick:    nowTick,
		Actions: recorded,
		Results: append([]ActionResult(nil), w.tickResults...),
		Moves:   append([]MoveRecord(nil), w.tickMoves...),
		Digest:  digest,
	}
	if w.tickLogger != nil {
		if err := w.tickLogger.WriteTick(entry); err != nil {
			w.logger.Printf("tick log write: %v", err)
		}
	}
	if w.tickSink != nil {
		select {
		case w.tickSink <- entry:
		default:
		}
	}
	w.publishObservers(nowTick, entry)

	if w.snapshotSink != nil && w.cfg.SnapshotEveryTicks > 0 && nowTick > 0 && nowTick%uint64(w.cfg.SnapshotEveryTicks) == 0 {
		snap := w.ExportSnapshot(nowTick)
		select {
		case w.snapshotSink <- snap:
		default:
			w.logger.Printf("snapshot sink full; skipping tick %d", nowTick)
		}
	}

	w.tick.Add(1)
}

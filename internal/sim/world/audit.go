package world

import "voxelmech.ai/internal/sim/world/feature/entities/items"

func (w *World) auditSetBlock(actor string, pos Vec3i, from, to BlockState, reason string) {
	w.writeAudit(AuditEntry{
		Tick:   w.tick.Load(),
		Actor:  actor,
		Action: "SET_BLOCK",
		Pos:    pos.ToArray(),
		From:   from.String(),
		To:     to.String(),
		Reason: reason,
	})
}

func (w *World) auditEvent(actor string, action string, pos Vec3i, reason string, details map[string]any) {
	w.writeAudit(AuditEntry{
		Tick:    w.tick.Load(),
		Actor:   actor,
		Action:  action,
		Pos:     pos.ToArray(),
		Reason:  reason,
		Details: details,
	})
}

func (w *World) auditFn(actor string) items.AuditFunc {
	return func(action string, pos Vec3i, details map[string]any) {
		w.auditEvent(actor, action, pos, "", details)
	}
}

func (w *World) writeAudit(entry AuditEntry) {
	if w.auditLogger == nil {
		return
	}
	if err := w.auditLogger.WriteAudit(entry); err != nil {
		w.logger.Printf("audit write: %v", err)
	}
}

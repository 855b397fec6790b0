package items

import (
	"fmt"
	"sort"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

const DropTTLTicksDefault = 6000 // 5 minutes at 20Hz

type AuditFunc func(action string, pos modelpkg.Vec3i, details map[string]any)

// Drops is the set of loose item stacks in a world, indexed by id and by cell.
type Drops struct {
	ByID  map[string]*modelpkg.ItemDrop
	ByPos map[modelpkg.Vec3i][]string

	TTLTicks uint64
	NextID   uint64
}

func NewDrops(ttl uint64) *Drops {
	if ttl == 0 {
		ttl = DropTTLTicksDefault
	}
	return &Drops{
		ByID:     map[string]*modelpkg.ItemDrop{},
		ByPos:    map[modelpkg.Vec3i][]string{},
		TTLTicks: ttl,
		NextID:   1,
	}
}

func (d *Drops) newID() string {
	id := fmt.Sprintf("D%06d", d.NextID)
	d.NextID++
	return id
}

// Spawn adds count of item at pos, merging into a stack of the same item already there.
func (d *Drops) Spawn(nowTick uint64, pos modelpkg.Vec3i, item string, count int, audit AuditFunc) string {
	if item == "" || count <= 0 {
		return ""
	}
	for _, id := range d.ByPos[pos] {
		e := d.ByID[id]
		if e == nil || e.Item != item || e.Count <= 0 {
			continue
		}
		e.Count += count
		if exp := nowTick + d.TTLTicks; exp > e.ExpiresTick {
			e.ExpiresTick = exp
		}
		if audit != nil {
			audit("DROP", pos, map[string]any{"drop_id": id, "item": item, "count": count, "merged": true})
		}
		return id
	}

	id := d.newID()
	d.ByID[id] = &modelpkg.ItemDrop{
		DropID:      id,
		Pos:         pos,
		Item:        item,
		Count:       count,
		CreatedTick: nowTick,
		ExpiresTick: nowTick + d.TTLTicks,
	}
	d.ByPos[pos] = append(d.ByPos[pos], id)
	if audit != nil {
		audit("DROP", pos, map[string]any{"drop_id": id, "item": item, "count": count, "merged": false})
	}
	return id
}

func (d *Drops) Remove(id, reason string, audit AuditFunc) {
	e := d.ByID[id]
	if e == nil {
		return
	}
	delete(d.ByID, id)
	ids := d.ByPos[e.Pos]
	for i := range ids {
		if ids[i] == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(d.ByPos, e.Pos)
	} else {
		d.ByPos[e.Pos] = ids
	}
	if audit != nil {
		audit("DROP_DESPAWN", e.Pos, map[string]any{"drop_id": id, "item": e.Item, "count": e.Count, "reason": reason})
	}
}

// Restore re-inserts a drop read from a snapshot.
func (d *Drops) Restore(e modelpkg.ItemDrop) {
	cp := e
	d.ByID[e.DropID] = &cp
	d.ByPos[e.Pos] = append(d.ByPos[e.Pos], e.DropID)
}

// SortedIDs lists live drop ids in ascending order.
func (d *Drops) SortedIDs() []string {
	out := make([]string, 0, len(d.ByID))
	for id := range d.ByID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// CleanupExpired removes every drop whose expiry is at or before nowTick.
func (d *Drops) CleanupExpired(nowTick uint64, audit AuditFunc) int {
	n := 0
	for _, id := range d.SortedIDs() {
		e := d.ByID[id]
		if e.ExpiresTick != 0 && nowTick >= e.ExpiresTick {
			d.Remove(id, "EXPIRE", audit)
			n++
		}
	}
	return n
}

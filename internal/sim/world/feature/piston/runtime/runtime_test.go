package runtime

import (
	"math"
	"testing"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/blockevents"
	"voxelmech.ai/internal/sim/world/logic/pushchain"
)

type fakeWorld struct {
	cells   map[modelpkg.Vec3i]modelpkg.Cell
	sources map[modelpkg.Vec3i]bool
	events  []blockevents.Event
	drops   []string
	sounds  []string
	pitches []float64
	notify  []modelpkg.Vec3i
	height  int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		cells:   map[modelpkg.Vec3i]modelpkg.Cell{},
		sources: map[modelpkg.Vec3i]bool{},
		height:  16,
	}
}

func testClassifier() *pushchain.Classifier {
	return pushchain.NewClassifier(map[string]pushchain.Traits{
		"STONE":         {Reaction: modelpkg.PushNormal},
		"DIRT":          {Reaction: modelpkg.PushNormal},
		"FLOWER":        {Reaction: modelpkg.PushDestroy},
		"OBSIDIAN":      {Reaction: modelpkg.PushBlock},
		"CHEST":         {Reaction: modelpkg.PushNormal, HasTile: true},
		"PISTON":        {Reaction: modelpkg.PushIgnore, Piston: true},
		"STICKY_PISTON": {Reaction: modelpkg.PushIgnore, Piston: true},
		"PISTON_HEAD":   {Reaction: modelpkg.PushIgnore},
	})
}

func (w *fakeWorld) ops() Ops {
	return Ops{
		Cell: func(p modelpkg.Vec3i) modelpkg.Cell { return w.cells[p] },
		SetCell: func(p modelpkg.Vec3i, c modelpkg.Cell) {
			if c.IsEmpty() {
				delete(w.cells, p)
				return
			}
			w.cells[p] = c
		},
		InBounds: func(p modelpkg.Vec3i) bool { return p.Y >= 0 && p.Y < w.height },
		IsSidePowered: func(p modelpkg.Vec3i, _ modelpkg.Facing) bool {
			return w.sources[p]
		},
		EnqueueBlockEvent: func(p modelpkg.Vec3i, block string, code, param int) bool {
			w.events = append(w.events, blockevents.Event{Pos: p, Block: block, Code: code, Param: param})
			return true
		},
		NotifyNeighbors: func(p modelpkg.Vec3i, _ string) { w.notify = append(w.notify, p) },
		DropFor: func(s modelpkg.BlockState) (string, bool) {
			if s.ID == "FLOWER" || s.ID == "PISTON" {
				return s.ID, true
			}
			return "", false
		},
		SpawnItemDrop: func(_ modelpkg.Vec3i, item string, _ int) { w.drops = append(w.drops, item) },
		PlaySound: func(_ modelpkg.Vec3i, sound string, _ float64, pitch float64) {
			w.sounds = append(w.sounds, sound)
			w.pitches = append(w.pitches, pitch)
		},
		Rand:       func(modelpkg.Vec3i) float64 { return 0.5 },
		Classifier: testClassifier(),
		HeadID:     "PISTON_HEAD",
		PushLimit:  pushchain.MaxPushLength,
	}
}

func (w *fakeWorld) put(p modelpkg.Vec3i, s modelpkg.BlockState) {
	w.cells[p] = modelpkg.Static(s)
}

// settle finishes every placeholder.
func (w *fakeWorld) settle() {
	for p, c := range w.cells {
		if c.IsAnimating() {
			c.Moving.Finish()
			w.cells[p] = c.Collapse()
		}
	}
}

func (w *fakeWorld) id(p modelpkg.Vec3i) string {
	c := w.cells[p]
	if c.IsAnimating() {
		return "MOVING:" + c.Moving.State.ID
	}
	if c.State.IsAir() {
		return modelpkg.AirID
	}
	return c.State.ID
}

var (
	origin = modelpkg.Vec3i{X: 0, Y: 4, Z: 0}
	stone  = modelpkg.NewBlockState("STONE")
)

func TestCommitExtendChains(t *testing.T) {
	for n := 1; n <= 12; n++ {
		w := newFakeWorld()
		w.put(origin, modelpkg.PistonState("PISTON", modelpkg.East, false))
		for i := 1; i <= n; i++ {
			w.put(origin.OffsetN(modelpkg.East, i), stone)
		}
		if !Commit(w.ops(), origin, modelpkg.East, true, false) {
			t.Fatalf("n=%d: commit failed", n)
		}
		if got := w.id(origin.Offset(modelpkg.East)); got != "MOVING:PISTON_HEAD" {
			t.Fatalf("n=%d: head cell=%s", n, got)
		}
		for i := 2; i <= n+1; i++ {
			if got := w.id(origin.OffsetN(modelpkg.East, i)); got != "MOVING:STONE" {
				t.Fatalf("n=%d: cell %d=%s", n, i, got)
			}
		}
		if !w.cells[origin].State.Bool(modelpkg.PropExtended) {
			t.Fatalf("n=%d: base not extended", n)
		}
		if len(w.sounds) != 1 || w.sounds[0] != SoundExtend || math.Abs(w.pitches[0]-0.725) > 1e-9 {
			t.Fatalf("n=%d: sounds=%v pitches=%v", n, w.sounds, w.pitches)
		}
		w.settle()
		for i := 2; i <= n+1; i++ {
			if got := w.id(origin.OffsetN(modelpkg.East, i)); got != "STONE" {
				t.Fatalf("n=%d: settled cell %d=%s", n, i, got)
			}
		}
		if got := w.id(origin.Offset(modelpkg.East)); got != "PISTON_HEAD" {
			t.Fatalf("n=%d: settled head=%s", n, got)
		}
	}
}

func TestCommitTooLongIsNoop(t *testing.T) {
	w := newFakeWorld()
	w.put(origin, modelpkg.PistonState("PISTON", modelpkg.East, false))
	for i := 1; i <= 13; i++ {
		w.put(origin.OffsetN(modelpkg.East, i), stone)
	}
	before := len(w.cells)
	if Commit(w.ops(), origin, modelpkg.East, true, false) {
		t.Fatalf("13 blocks should not move")
	}
	if len(w.cells) != before || w.cells[origin].State.Bool(modelpkg.PropExtended) {
		t.Fatalf("world mutated on failure")
	}
	for i := 1; i <= 13; i++ {
		if got := w.id(origin.OffsetN(modelpkg.East, i)); got != "STONE" {
			t.Fatalf("cell %d=%s", i, got)
		}
	}
	if len(w.sounds) != 0 || len(w.notify) != 0 {
		t.Fatalf("failure emitted sounds=%v notify=%v", w.sounds, w.notify)
	}
}

func TestCommitDestroysFragileBlocks(t *testing.T) {
	w := newFakeWorld()
	w.put(origin, modelpkg.PistonState("PISTON", modelpkg.East, false))
	w.put(origin.OffsetN(modelpkg.East, 1), stone)
	w.put(origin.OffsetN(modelpkg.East, 2), modelpkg.NewBlockState("FLOWER"))
	if !Commit(w.ops(), origin, modelpkg.East, true, false) {
		t.Fatalf("commit failed")
	}
	if len(w.drops) != 1 || w.drops[0] != "FLOWER" {
		t.Fatalf("drops=%v", w.drops)
	}
	w.settle()
	if got := w.id(origin.OffsetN(modelpkg.East, 2)); got != "STONE" {
		t.Fatalf("stone should land on the flower cell, got %s", got)
	}
	if got := w.id(origin.OffsetN(modelpkg.East, 3)); got != modelpkg.AirID {
		t.Fatalf("cell past the flower=%s", got)
	}
}

func TestCommitBlockedByImmovable(t *testing.T) {
	for _, id := range []string{"OBSIDIAN", "CHEST"} {
		w := newFakeWorld()
		w.put(origin, modelpkg.PistonState("PISTON", modelpkg.East, false))
		w.put(origin.OffsetN(modelpkg.East, 1), stone)
		w.put(origin.OffsetN(modelpkg.East, 2), modelpkg.NewBlockState(id))
		if Commit(w.ops(), origin, modelpkg.East, true, false) {
			t.Fatalf("%s should block the push", id)
		}
		if got := w.id(origin.Offset(modelpkg.East)); got != "STONE" {
			t.Fatalf("%s: front cell=%s", id, got)
		}
	}
}

func TestCheckForMove(t *testing.T) {
	w := newFakeWorld()
	st := modelpkg.PistonState("PISTON", modelpkg.East, false)
	w.put(origin, st)
	if CheckForMove(w.ops(), origin, st, false) || len(w.events) != 0 {
		t.Fatalf("unpowered retracted piston queued %v", w.events)
	}

	w.sources[origin.Offset(modelpkg.West)] = true
	if !CheckForMove(w.ops(), origin, st, false) {
		t.Fatalf("powered piston did not queue")
	}
	if e := w.events[0]; e.Code != blockevents.CodeExtend || e.Param != modelpkg.East.Index() || e.Block != "PISTON" {
		t.Fatalf("event=%+v", e)
	}

	ext := st.With(modelpkg.PropExtended, modelpkg.BoolValue(true))
	if CheckForMove(w.ops(), origin, ext, false) {
		t.Fatalf("powered extended piston queued again")
	}

	delete(w.sources, origin.Offset(modelpkg.West))
	if !CheckForMove(w.ops(), origin, ext, false) || w.events[1].Code != blockevents.CodeRetract {
		t.Fatalf("unpowered extended piston should queue retract: %v", w.events)
	}
}

func TestCheckForMoveSkipsBlockedExtend(t *testing.T) {
	w := newFakeWorld()
	st := modelpkg.PistonState("PISTON", modelpkg.East, false)
	w.put(origin, st)
	w.put(origin.Offset(modelpkg.East), modelpkg.NewBlockState("OBSIDIAN"))
	w.sources[origin.Offset(modelpkg.Up)] = true
	if CheckForMove(w.ops(), origin, st, false) || len(w.events) != 0 {
		t.Fatalf("blocked extend queued %v", w.events)
	}
}

func TestHandleEventStale(t *testing.T) {
	w := newFakeWorld()
	st := modelpkg.PistonState("PISTON", modelpkg.East, false)
	w.put(origin, st)
	if HandleEvent(w.ops(), origin, st, false, blockevents.CodeExtend, 0) {
		t.Fatalf("unpowered extend should be dropped")
	}

	w.sources[origin.Offset(modelpkg.North)] = true
	ext := st.With(modelpkg.PropExtended, modelpkg.BoolValue(true))
	w.put(origin, ext)
	w.put(origin.Offset(modelpkg.East), modelpkg.HeadState("PISTON_HEAD", modelpkg.East, false))
	if HandleEvent(w.ops(), origin, ext, false, blockevents.CodeRetract, 0) {
		t.Fatalf("powered retract should be dropped")
	}
	if got := w.id(origin.Offset(modelpkg.East)); got != "PISTON_HEAD" {
		t.Fatalf("head removed by stale retract: %s", got)
	}
}

func extendedWithStone(w *fakeWorld, id string, sticky bool) modelpkg.BlockState {
	ext := modelpkg.PistonState(id, modelpkg.East, true)
	w.put(origin, ext)
	w.put(origin.Offset(modelpkg.East), modelpkg.HeadState("PISTON_HEAD", modelpkg.East, sticky))
	w.put(origin.OffsetN(modelpkg.East, 2), stone)
	return ext
}

func TestRetractNonSticky(t *testing.T) {
	w := newFakeWorld()
	ext := extendedWithStone(w, "PISTON", false)
	if !HandleEvent(w.ops(), origin, ext, false, blockevents.CodeRetract, 0) {
		t.Fatalf("retract failed")
	}
	if got := w.id(origin.Offset(modelpkg.East)); got != modelpkg.AirID {
		t.Fatalf("head cell=%s", got)
	}
	if got := w.id(origin.OffsetN(modelpkg.East, 2)); got != "STONE" {
		t.Fatalf("non-sticky retract touched pos+2: %s", got)
	}
	c := w.cells[origin]
	if !c.IsAnimating() || c.Moving.Extending || !c.Moving.Head || c.Moving.Progress != 1 {
		t.Fatalf("base cell=%+v", c)
	}
	if c.Moving.State.ID != "PISTON" || c.Moving.State.Bool(modelpkg.PropExtended) {
		t.Fatalf("base lands as %s", c.Moving.State)
	}
	if len(w.sounds) != 1 || w.sounds[0] != SoundRetract {
		t.Fatalf("sounds=%v", w.sounds)
	}
	w.settle()
	if got := w.cells[origin].State; got != modelpkg.PistonState("PISTON", modelpkg.East, false) {
		t.Fatalf("settled base=%s", got)
	}
}

func expectNotified(t *testing.T, got []modelpkg.Vec3i, want ...modelpkg.Vec3i) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("notified %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("notified %v want %v", got, want)
		}
	}
}

func TestCommitNotifyOrder(t *testing.T) {
	w := newFakeWorld()
	w.put(origin, modelpkg.PistonState("PISTON", modelpkg.East, false))
	flower := modelpkg.NewBlockState("FLOWER")
	for i, st := range []modelpkg.BlockState{stone, flower, stone, flower} {
		w.put(origin.OffsetN(modelpkg.East, i+1), st)
	}
	if !Commit(w.ops(), origin, modelpkg.East, true, false) {
		t.Fatalf("commit failed")
	}
	e := func(n int) modelpkg.Vec3i { return origin.OffsetN(modelpkg.East, n) }
	// Destroyed cells far to near, then moved cells far to near, then the head and base.
	expectNotified(t, w.notify, e(4), e(2), e(3), e(1), e(1), origin)
}

func TestRetractNotifyOrder(t *testing.T) {
	e := func(n int) modelpkg.Vec3i { return origin.OffsetN(modelpkg.East, n) }

	w := newFakeWorld()
	ext := extendedWithStone(w, "STICKY_PISTON", true)
	HandleEvent(w.ops(), origin, ext, true, blockevents.CodeRetract, 0)
	expectNotified(t, w.notify, e(2), e(1), origin)

	w = newFakeWorld()
	ext = extendedWithStone(w, "PISTON", false)
	HandleEvent(w.ops(), origin, ext, false, blockevents.CodeRetract, 0)
	expectNotified(t, w.notify, e(1), origin)
}

func TestRetractStickyPulls(t *testing.T) {
	w := newFakeWorld()
	ext := extendedWithStone(w, "STICKY_PISTON", true)
	if !HandleEvent(w.ops(), origin, ext, true, blockevents.CodeRetract, 0) {
		t.Fatalf("retract failed")
	}
	c := w.cells[origin.Offset(modelpkg.East)]
	if !c.IsAnimating() || c.Moving.Extending || c.Moving.State != stone || c.Moving.Progress != 1 {
		t.Fatalf("head cell=%+v", c)
	}
	if got := w.id(origin.OffsetN(modelpkg.East, 2)); got != modelpkg.AirID {
		t.Fatalf("pulled source=%s", got)
	}
	if got := w.id(origin); got != "MOVING:STICKY_PISTON" {
		t.Fatalf("base cell=%s", got)
	}
	if len(w.sounds) != 1 {
		t.Fatalf("sounds=%v", w.sounds)
	}
	w.settle()
	if got := w.id(origin.Offset(modelpkg.East)); got != "STONE" {
		t.Fatalf("settled=%s", got)
	}
}

func TestRetractStickyFinishesIncomingPlaceholder(t *testing.T) {
	w := newFakeWorld()
	ext := extendedWithStone(w, "STICKY_PISTON", true)
	far := origin.OffsetN(modelpkg.East, 2)
	m := modelpkg.NewMovingPlaceholder(stone, modelpkg.East, true, origin.OffsetN(modelpkg.West, 3))
	w.cells[far] = modelpkg.Animating(m)

	HandleEvent(w.ops(), origin, ext, true, blockevents.CodeRetract, 0)
	if got := w.id(far); got != "STONE" {
		t.Fatalf("placeholder should land in place, got %s", got)
	}
	if got := w.id(origin.Offset(modelpkg.East)); got != modelpkg.AirID {
		t.Fatalf("nothing should be pulled, head cell=%s", got)
	}
}

func TestExtendRetractRoundTrip(t *testing.T) {
	w := newFakeWorld()
	w.sources[origin.Offset(modelpkg.Down)] = true
	st := modelpkg.PistonState("STICKY_PISTON", modelpkg.East, false)
	w.put(origin, st)
	w.put(origin.Offset(modelpkg.East), stone)

	if !HandleEvent(w.ops(), origin, st, true, blockevents.CodeExtend, 0) {
		t.Fatalf("extend failed")
	}
	w.settle()
	delete(w.sources, origin.Offset(modelpkg.Down))
	if !HandleEvent(w.ops(), origin, w.cells[origin].State, true, blockevents.CodeRetract, 0) {
		t.Fatalf("retract failed")
	}
	w.settle()
	if w.cells[origin].State != st {
		t.Fatalf("base=%s want %s", w.cells[origin].State, st)
	}
	if got := w.id(origin.Offset(modelpkg.East)); got != "STONE" {
		t.Fatalf("front=%s", got)
	}
	if got := w.id(origin.OffsetN(modelpkg.East, 2)); got != modelpkg.AirID {
		t.Fatalf("pos+2=%s", got)
	}
}

func TestHeadAndBaseBreaks(t *testing.T) {
	w := newFakeWorld()
	ext := extendedWithStone(w, "PISTON", false)
	head := origin.Offset(modelpkg.East)
	hs := w.cells[head].State
	delete(w.cells, head)
	if !HeadBroken(w.ops(), head, hs) {
		t.Fatalf("head break should remove the base")
	}
	if got := w.id(origin); got != modelpkg.AirID || len(w.drops) != 1 || w.drops[0] != "PISTON" {
		t.Fatalf("base=%s drops=%v", got, w.drops)
	}

	w = newFakeWorld()
	ext = extendedWithStone(w, "PISTON", false)
	delete(w.cells, origin)
	if !BaseBroken(w.ops(), origin, ext) {
		t.Fatalf("base break should remove the head")
	}
	if got := w.id(head); got != modelpkg.AirID {
		t.Fatalf("head=%s", got)
	}
}

package world

import (
	"testing"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/pushchain"
)

func TestPistonPushesChainsUpToLimit(t *testing.T) {
	for n := 1; n <= pushchain.MaxPushLength; n++ {
		w := newTestWorld(t, testConfig())
		front := make([]string, n)
		for i := range front {
			front[i] = "STONE"
		}
		pistonRig(t, w, "PISTON", front...)

		toggleLever(t, w)
		if !extended(w, pistonPos) {
			t.Fatalf("n=%d: base not extended after the event tick", n)
		}
		if got := idAt(w, east(1)); got != "MOVING_PISTON" {
			t.Fatalf("n=%d: head cell reads %s while animating", n, got)
		}
		steps(w, 1)
		if got := idAt(w, east(1)); got != "PISTON_HEAD" {
			t.Fatalf("n=%d: head=%s", n, got)
		}
		for i := 2; i <= n+1; i++ {
			if got := idAt(w, east(i)); got != "STONE" {
				t.Fatalf("n=%d: cell %d=%s", n, i, got)
			}
		}
		if got := idAt(w, east(n+2)); got != "AIR" {
			t.Fatalf("n=%d: cell past chain=%s", n, got)
		}
		if s := w.Summary(); s.Moving != 0 || s.Moves != 1 {
			t.Fatalf("n=%d: summary=%+v", n, s)
		}
	}
}

func TestPistonThirteenBlocksDoesNothing(t *testing.T) {
	w := newTestWorld(t, testConfig())
	front := make([]string, pushchain.MaxPushLength+1)
	for i := range front {
		front[i] = "STONE"
	}
	pistonRig(t, w, "PISTON", front...)
	before := w.StateDigest()

	toggleLever(t, w)
	steps(w, 3)
	if extended(w, pistonPos) {
		t.Fatalf("piston extended with 13 blocks in front")
	}
	for i := 1; i <= len(front); i++ {
		if got := idAt(w, east(i)); got != "STONE" {
			t.Fatalf("cell %d=%s", i, got)
		}
	}
	if s := w.Summary(); s.PendingEvents != 0 || s.Moves != 0 {
		t.Fatalf("summary=%+v", s)
	}
	if before == w.StateDigest() {
		t.Fatalf("digest should still move with the tick and lever")
	}
}

func TestPistonDestroysFragileBlocks(t *testing.T) {
	w := newTestWorld(t, testConfig())
	pistonRig(t, w, "PISTON", "STONE", "FLOWER", "DIRT")

	toggleLever(t, w)
	steps(w, 1)
	if got := idAt(w, east(2)); got != "STONE" {
		t.Fatalf("stone should land on the flower cell, got %s", got)
	}
	if got := idAt(w, east(4)); got != "DIRT" {
		t.Fatalf("dirt should be pushed one cell, got %s", got)
	}
	if len(w.drops.ByID) != 1 {
		t.Fatalf("drops=%d", len(w.drops.ByID))
	}
	for _, d := range w.drops.ByID {
		if d.Item != "FLOWER" || d.Pos != east(2) {
			t.Fatalf("drop=%+v", d)
		}
	}
}

func TestPistonBlockedByImmovable(t *testing.T) {
	for _, id := range []string{"OBSIDIAN", "BEDROCK", "CHEST"} {
		w := newTestWorld(t, testConfig())
		pistonRig(t, w, "PISTON", "STONE", id)
		toggleLever(t, w)
		steps(w, 2)
		if extended(w, pistonPos) {
			t.Fatalf("%s: piston extended", id)
		}
		if got := idAt(w, east(1)); got != "STONE" {
			t.Fatalf("%s: front=%s", id, got)
		}
	}
}

func TestExtendedPistonIsImmovable(t *testing.T) {
	w := newTestWorld(t, testConfig())
	// A powered upward piston in front keeps its head extended.
	put(t, w, east(1).Offset(modelpkg.South), "REDSTONE_BLOCK")
	pistonRig(t, w, "PISTON", "PISTON[extended=true,facing=up]")
	put(t, w, east(1).Offset(modelpkg.Up), "PISTON_HEAD[facing=up,type=default]")
	toggleLever(t, w)
	steps(w, 2)
	if extended(w, pistonPos) {
		t.Fatalf("pushed an extended piston")
	}
	if !extended(w, east(1)) {
		t.Fatalf("front piston should stay extended")
	}

	w = newTestWorld(t, testConfig())
	pistonRig(t, w, "PISTON", "PISTON[extended=false,facing=up]")
	toggleLever(t, w)
	steps(w, 1)
	if got := idAt(w, east(2)); got != "PISTON" {
		t.Fatalf("retracted piston should be pushed, got %s", got)
	}
}

func TestNonStickyRetractLeavesBlock(t *testing.T) {
	w := newTestWorld(t, testConfig())
	pistonRig(t, w, "PISTON", "STONE")
	toggleLever(t, w)
	steps(w, 1)

	toggleLever(t, w)
	if extended(w, pistonPos) {
		t.Fatalf("still extended after retract")
	}
	if got := idAt(w, east(1)); got != "AIR" {
		t.Fatalf("head cell=%s", got)
	}
	// The base animates back for one tick before it lands retracted.
	c := w.Cell(pistonPos)
	if got := idAt(w, pistonPos); got != "MOVING_PISTON" || !c.IsAnimating() || !c.Moving.Head || c.Moving.Progress != 0.5 {
		t.Fatalf("base during retract: %s %+v", got, c)
	}
	steps(w, 1)
	if got := w.GetBlockState(pistonPos); got.ID != "PISTON" || got.Bool(modelpkg.PropExtended) {
		t.Fatalf("base after retract=%s", got)
	}
	if s := w.Summary(); s.Moving != 0 || s.Moves != 1 {
		t.Fatalf("summary=%+v", s)
	}
	steps(w, 1)
	if got := idAt(w, east(2)); got != "STONE" {
		t.Fatalf("pos+2 changed: %s", got)
	}
}

func TestStickyRetractPullsOneBlock(t *testing.T) {
	w := newTestWorld(t, testConfig())
	pistonRig(t, w, "STICKY_PISTON", "STONE", "DIRT")
	toggleLever(t, w)
	steps(w, 1)
	if idAt(w, east(2)) != "STONE" || idAt(w, east(3)) != "DIRT" {
		t.Fatalf("extend: %s %s", idAt(w, east(2)), idAt(w, east(3)))
	}

	toggleLever(t, w)
	c := w.Cell(east(1))
	if !c.IsAnimating() || c.Moving.Extending || c.Moving.State.ID != "STONE" {
		t.Fatalf("pulled placeholder=%+v", c)
	}
	steps(w, 1)
	if got := idAt(w, east(1)); got != "STONE" {
		t.Fatalf("pulled block=%s", got)
	}
	if got := idAt(w, east(2)); got != "AIR" {
		t.Fatalf("pos+2=%s", got)
	}
	if got := idAt(w, east(3)); got != "DIRT" {
		t.Fatalf("only one block may be pulled, pos+3=%s", got)
	}
}

func TestNoEventWithoutPowerChange(t *testing.T) {
	w := newTestWorld(t, testConfig())
	pistonRig(t, w, "PISTON", "STONE")
	toggleLever(t, w)
	steps(w, 1)
	steps(w, 20)
	if s := w.Summary(); s.Moves != 1 || s.PendingEvents != 0 || s.Moving != 0 {
		t.Fatalf("summary=%+v", s)
	}
}

func TestExtendRetractRoundTrip(t *testing.T) {
	w := newTestWorld(t, testConfig())
	pistonRig(t, w, "STICKY_PISTON", "STONE", "PLANK")
	before := []string{idAt(w, pistonPos), idAt(w, east(1)), idAt(w, east(2)), idAt(w, east(3))}
	beforeBase := w.GetBlockState(pistonPos)

	toggleLever(t, w)
	steps(w, 1)
	toggleLever(t, w)
	steps(w, 1)

	// Sticky pull brings back only the block touching the head.
	after := []string{idAt(w, pistonPos), idAt(w, east(1)), idAt(w, east(2)), idAt(w, east(3))}
	want := []string{before[0], before[1], "AIR", before[2]}
	for i := range want {
		if after[i] != want[i] {
			t.Fatalf("after=%v want %v", after, want)
		}
	}
	if w.GetBlockState(pistonPos) != beforeBase {
		t.Fatalf("base=%s want %s", w.GetBlockState(pistonPos), beforeBase)
	}
}

func TestStaleEventDroppedWhenBlockReplaced(t *testing.T) {
	w := newTestWorld(t, testConfig())
	pistonRig(t, w, "PISTON", "STONE")
	w.EnqueueBlockEvent(pistonPos, "STICKY_PISTON", 0, 5)
	steps(w, 1)
	if extended(w, pistonPos) || w.events.Len() != 0 {
		t.Fatalf("event for a different block id should be dropped")
	}
}

func TestBlockEventCapRollsOver(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBlockEventsPerTick = 1
	w := newTestWorld(t, cfg)
	lever := Vec3i{X: 0, Y: 1, Z: 0}
	a := Vec3i{X: 1, Y: 1, Z: 0}
	b := Vec3i{X: -1, Y: 1, Z: 0}
	put(t, w, lever, "LEVER[powered=false]")
	put(t, w, a, "PISTON[extended=false,facing=east]")
	put(t, w, b, "PISTON[extended=false,facing=west]")

	if r := act(t, w, Action{Type: ActToggle, Pos: lever.ToArray()}); !r.OK {
		t.Fatalf("toggle: %+v", r)
	}
	if extended(w, a) == extended(w, b) {
		t.Fatalf("exactly one piston should move in the first tick")
	}
	if w.events.Len() != 1 {
		t.Fatalf("pending=%d", w.events.Len())
	}
	steps(w, 1)
	if !extended(w, a) || !extended(w, b) {
		t.Fatalf("second piston should move on the next tick")
	}
}

func TestPowerFromBlockAbove(t *testing.T) {
	w := newTestWorld(t, testConfig())
	put(t, w, pistonPos, "PISTON[extended=false,facing=east]")
	put(t, w, east(1), "STONE")
	src := pistonPos.Offset(modelpkg.Up).Offset(modelpkg.North)
	if r := act(t, w, Action{Type: ActPlace, Pos: src.ToArray(), State: "REDSTONE_BLOCK"}); !r.OK {
		t.Fatalf("place: %+v", r)
	}
	if !extended(w, pistonPos) {
		t.Fatalf("power next to the cell above should extend the piston")
	}
}

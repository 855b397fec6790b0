package world

import (
	"testing"

	"voxelmech.ai/internal/sim/catalogs"
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

func testConfig() WorldConfig {
	return WorldConfig{
		ID:        "test",
		Height:    32,
		BoundaryR: 64,
		Seed:      42,
	}
}

func newTestWorld(t *testing.T, cfg WorldConfig) *World {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	w, err := New(cfg, cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

func mustState(t *testing.T, text string) BlockState {
	t.Helper()
	st, err := modelpkg.ParseBlockState(text)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	return st
}

// put writes a block without neighbor updates.
func put(t *testing.T, w *World, pos Vec3i, text string) {
	t.Helper()
	if !w.SetBlockState(pos, mustState(t, text), FlagSync) {
		t.Fatalf("put %s at %+v refused", text, pos)
	}
}

func idAt(w *World, pos Vec3i) string {
	st := w.GetBlockState(pos)
	if st.IsAir() {
		return modelpkg.AirID
	}
	return st.ID
}

func act(t *testing.T, w *World, a Action) ActionResult {
	t.Helper()
	res := make(chan ActionResult, 1)
	w.StepOnce([]ActionEnvelope{{Actor: "tester", Act: a, Result: res}})
	select {
	case r := <-res:
		return r
	default:
		t.Fatalf("no result for %+v", a)
	}
	return ActionResult{}
}

func steps(w *World, n int) string {
	var d string
	for i := 0; i < n; i++ {
		_, d = w.StepOnce(nil)
	}
	return d
}

var (
	pistonPos = Vec3i{X: 0, Y: 1, Z: 0}
	leverPos  = Vec3i{X: 0, Y: 1, Z: -1}
)

func east(n int) Vec3i { return pistonPos.OffsetN(modelpkg.East, n) }

// pistonRig places a piston facing east with an unpowered lever on its north side and
// the given blocks in front of it.
func pistonRig(t *testing.T, w *World, pistonID string, front ...string) {
	t.Helper()
	put(t, w, pistonPos, pistonID+"[extended=false,facing=east]")
	put(t, w, leverPos, "LEVER[powered=false]")
	for i, id := range front {
		put(t, w, east(i+1), id)
	}
}

func toggleLever(t *testing.T, w *World) {
	t.Helper()
	if r := act(t, w, Action{Type: ActToggle, Pos: leverPos.ToArray()}); !r.OK {
		t.Fatalf("toggle failed: %+v", r)
	}
}

func extended(w *World, pos Vec3i) bool {
	return w.GetBlockState(pos).Bool(modelpkg.PropExtended)
}

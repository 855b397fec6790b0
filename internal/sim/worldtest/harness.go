package worldtest

import (
	"testing"

	"voxelmech.ai/internal/persistence/snapshot"
	"voxelmech.ai/internal/sim/catalogs"
	"voxelmech.ai/internal/sim/scene"
	world "voxelmech.ai/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Act()/Step() advance the world through StepOnce()
// - every tick log entry is captured from the tick sink
// - Snapshot() exports at the last finished tick so an import resumes at CurrentTick
//
// It intentionally avoids touching world internals so tests can live outside the world package.
type Harness struct {
	T    *testing.T
	Cats *catalogs.Catalogs
	W    *world.World

	Actor   string
	Entries []world.TickLogEntry

	sink chan world.TickLogEntry
}

func NewHarness(t *testing.T, cfg world.WorldConfig, cats *catalogs.Catalogs) *Harness {
	t.Helper()

	w, err := world.New(cfg, cats)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w, cats)
}

// NewHarnessWithWorld is like NewHarness, but uses an already-constructed world instance.
// This is useful for snapshot round-trip tests where the snapshot is imported first.
func NewHarnessWithWorld(t *testing.T, w *world.World, cats *catalogs.Catalogs) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	h := &Harness{
		T:     t,
		Cats:  cats,
		W:     w,
		Actor: "tester",
		sink:  make(chan world.TickLogEntry, 8),
	}
	w.SetTickSink(h.sink)
	return h
}

// LoadScene seeds the world from a scene file.
func (h *Harness) LoadScene(path string) int {
	h.T.Helper()
	s, err := scene.Load(path)
	if err != nil {
		h.T.Fatalf("scene.Load: %v", err)
	}
	n, err := h.W.SeedScene(s)
	if err != nil {
		h.T.Fatalf("SeedScene: %v", err)
	}
	return n
}

func (h *Harness) Act(a world.Action) world.ActionResult {
	h.T.Helper()
	res := make(chan world.ActionResult, 1)
	h.StepMulti([]world.ActionEnvelope{{Actor: h.Actor, Act: a, Result: res}})
	select {
	case r := <-res:
		return r
	default:
		h.T.Fatalf("no result for action %+v", a)
	}
	return world.ActionResult{}
}

func (h *Harness) MustAct(a world.Action) {
	h.T.Helper()
	if r := h.Act(a); !r.OK {
		h.T.Fatalf("%s at %v: %s %s", a.Type, a.Pos, r.Code, r.Message)
	}
}

func (h *Harness) StepMulti(actions []world.ActionEnvelope) string {
	h.T.Helper()
	_, d := h.W.StepOnce(actions)
	h.drain()
	return d
}

func (h *Harness) StepNoop() string { return h.StepMulti(nil) }

func (h *Harness) StepFor(n int) string {
	var d string
	for i := 0; i < n; i++ {
		d = h.StepNoop()
	}
	return d
}

// Block returns the block id at pos; animating cells read as the placeholder id.
func (h *Harness) Block(pos world.Vec3i) string {
	st := h.W.GetBlockState(pos)
	if st.IsAir() {
		return "AIR"
	}
	return st.ID
}

func (h *Harness) Snapshot() (tick uint64, snap snapshot.SnapshotV1) {
	h.T.Helper()
	// Keep tick stable: export at currentTick-1 then import would restore to currentTick.
	cur := h.W.CurrentTick()
	if cur == 0 {
		return 0, h.W.ExportSnapshot(0)
	}
	tick = cur - 1
	return tick, h.W.ExportSnapshot(tick)
}

// Moves returns every piston move recorded so far.
func (h *Harness) Moves() []world.MoveRecord {
	var out []world.MoveRecord
	for _, e := range h.Entries {
		out = append(out, e.Moves...)
	}
	return out
}

func (h *Harness) drain() {
	for {
		select {
		case e := <-h.sink:
			h.Entries = append(h.Entries, e)
		default:
			return
		}
	}
}

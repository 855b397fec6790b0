package worldtest

import (
	"testing"

	"voxelmech.ai/internal/sim/catalogs"
	world "voxelmech.ai/internal/sim/world"
)

const demoScene = "../../../configs/scenes/demo.yaml"

var (
	demoPiston = world.Vec3i{X: 0, Y: 1, Z: 0}
	demoLever  = world.Vec3i{X: 0, Y: 1, Z: -1}
)

func loadCats(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func demoConfig() world.WorldConfig {
	return world.WorldConfig{ID: "demo", Height: 16, BoundaryR: 32, Seed: 1337}
}

func newDemo(t *testing.T) *Harness {
	t.Helper()
	h := NewHarness(t, demoConfig(), loadCats(t))
	h.LoadScene(demoScene)
	return h
}

func eastOf(p world.Vec3i, n int) world.Vec3i { return world.Vec3i{X: p.X + n, Y: p.Y, Z: p.Z} }

func toggle(pos world.Vec3i) world.Action {
	return world.Action{Type: world.ActToggle, Pos: pos.ToArray()}
}

func expectRow(t *testing.T, h *Harness, want ...string) {
	t.Helper()
	for i, id := range want {
		if got := h.Block(eastOf(demoPiston, i+1)); got != id {
			t.Fatalf("cell +%d: got %s want %s", i+1, got, id)
		}
	}
}

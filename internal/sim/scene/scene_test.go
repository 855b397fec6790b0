package scene

import (
	"path/filepath"
	"testing"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

func TestLoadDemoScene(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "..", "configs", "scenes", "demo.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "demo" {
		t.Fatalf("name=%q", s.Name)
	}
	ps := s.Placements()
	if len(ps) != 6+17*17 {
		t.Fatalf("placements=%d", len(ps))
	}
	first := ps[0]
	if first.Pos != (modelpkg.Vec3i{X: 0, Y: 1, Z: 0}) || first.State.ID != "STICKY_PISTON" {
		t.Fatalf("first=%+v", first)
	}
	if f, ok := first.State.Facing(modelpkg.PropFacing); !ok || f != modelpkg.East {
		t.Fatalf("facing=%v ok=%v", f, ok)
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"both":    "blocks:\n  - pos: [0,0,0]\n    fill: {from: [0,0,0], to: [1,1,1]}\n    state: STONE\n",
		"neither": "blocks:\n  - state: STONE\n",
		"state":   "blocks:\n  - pos: [0,0,0]\n    state: \"STONE[x\"\n",
		"huge":    "blocks:\n  - fill: {from: [0,0,0], to: [1000,1000,1000]}\n    state: STONE\n",
	}
	for name, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestFillOrderAndReversedBounds(t *testing.T) {
	s, err := Parse([]byte("blocks:\n  - fill: {from: [1,0,1], to: [0,1,0]}\n    state: DIRT\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ps := s.Placements()
	if len(ps) != 8 {
		t.Fatalf("placements=%d", len(ps))
	}
	if ps[0].Pos != (modelpkg.Vec3i{}) || ps[1].Pos != (modelpkg.Vec3i{X: 1}) || ps[7].Pos != (modelpkg.Vec3i{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("order=%+v", ps)
	}
}

package snapshotcodec

import (
	"testing"

	"voxelmech.ai/internal/persistence/snapshot"
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

func TestPaletteRoundTrip(t *testing.T) {
	in := []modelpkg.BlockState{
		modelpkg.Air,
		modelpkg.NewBlockState("STONE"),
		modelpkg.PistonState("STICKY_PISTON", modelpkg.North, true),
	}
	out, err := DecodePalette(EncodePalette(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("palette[%d]=%s want %s", i, out[i], in[i])
		}
	}
	if _, err := DecodePalette([]string{"AIR", "STONE[facing"}); err == nil {
		t.Fatalf("malformed entry accepted")
	}
}

func TestMovingRoundTrip(t *testing.T) {
	m := modelpkg.NewMovingPlaceholder(modelpkg.NewBlockState("DIRT"), modelpkg.West, false, modelpkg.Vec3i{X: 4, Y: 2})
	m.Head = true
	m.Tick(0.5)
	pos := modelpkg.Vec3i{X: 3, Y: 2}
	gotPos, got, err := DecodeMoving(EncodeMoving(pos, m, 7))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gotPos != pos || *got != *m {
		t.Fatalf("got %+v at %+v", got, gotPos)
	}
	if _, _, err := DecodeMoving(snapshot.MovingV1{State: "DIRT", Facing: 9}); err == nil {
		t.Fatalf("bad facing accepted")
	}
}

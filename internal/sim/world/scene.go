package world

import (
	"fmt"

	"voxelmech.ai/internal/sim/scene"
)

// SeedScene writes every scene placement through SetBlockState, so pistons next to
// powered sources queue their moves exactly as if the blocks were placed by hand.
// Call it before Run or from the world loop.
func (w *World) SeedScene(s *scene.Scene) (int, error) {
	ps := s.Placements()
	for _, p := range ps {
		if !p.State.IsAir() {
			if _, ok := w.blockDef(p.State.ID); !ok {
				return 0, fmt.Errorf("scene %s: unknown block %s", s.Name, p.State.ID)
			}
		}
		if !w.chunks.InBounds(p.Pos) {
			return 0, fmt.Errorf("scene %s: %v out of bounds", s.Name, p.Pos)
		}
	}
	for _, p := range ps {
		w.SetBlockState(p.Pos, p.State, FlagNotify|FlagSync)
	}
	return len(ps), nil
}

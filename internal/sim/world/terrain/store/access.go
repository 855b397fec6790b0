package store

import (
	"fmt"
	"sort"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/mathx"
)

// ChunkStore is the sparse grid backing a world. Unloaded chunks read as air.
type ChunkStore struct {
	Height    int
	BoundaryR int // blocks; 0 disables the horizontal border

	Chunks map[ChunkKey]*Chunk

	palette      []modelpkg.BlockState
	paletteIndex map[modelpkg.BlockState]uint16
}

func NewChunkStore(height, boundaryR int) *ChunkStore {
	s := &ChunkStore{
		Height:       height,
		BoundaryR:    boundaryR,
		Chunks:       map[ChunkKey]*Chunk{},
		paletteIndex: map[modelpkg.BlockState]uint16{},
	}
	s.StateID(modelpkg.Air)
	return s
}

func (s *ChunkStore) InBounds(p modelpkg.Vec3i) bool {
	if p.Y < 0 || p.Y >= s.Height {
		return false
	}
	if s.BoundaryR > 0 {
		if p.X < -s.BoundaryR || p.X > s.BoundaryR || p.Z < -s.BoundaryR || p.Z > s.BoundaryR {
			return false
		}
	}
	return true
}

// StateID interns st into the store palette. Air is always id 0.
func (s *ChunkStore) StateID(st modelpkg.BlockState) uint16 {
	if st.ID == "" {
		st = modelpkg.Air
	}
	if id, ok := s.paletteIndex[st]; ok {
		return id
	}
	if len(s.palette) > 0xFFFF {
		panic("chunk store palette overflow")
	}
	id := uint16(len(s.palette))
	s.palette = append(s.palette, st)
	s.paletteIndex[st] = id
	return id
}

func (s *ChunkStore) State(id uint16) modelpkg.BlockState {
	if int(id) >= len(s.palette) {
		return modelpkg.Air
	}
	return s.palette[id]
}

// Palette returns the interned states in id order.
func (s *ChunkStore) Palette() []modelpkg.BlockState {
	out := make([]modelpkg.BlockState, len(s.palette))
	copy(out, s.palette)
	return out
}

func split(p modelpkg.Vec3i) (key ChunkKey, lx, lz int) {
	return ChunkKey{CX: mathx.FloorDiv(p.X, ChunkSize), CZ: mathx.FloorDiv(p.Z, ChunkSize)}, mathx.Mod(p.X, ChunkSize), mathx.Mod(p.Z, ChunkSize)
}

func (s *ChunkStore) Cell(p modelpkg.Vec3i) modelpkg.Cell {
	if !s.InBounds(p) {
		return modelpkg.Static(modelpkg.Air)
	}
	k, lx, lz := split(p)
	ch := s.Chunks[k]
	if ch == nil {
		return modelpkg.Static(modelpkg.Air)
	}
	if m := ch.moving(lx, p.Y, lz); m != nil {
		return modelpkg.Animating(m)
	}
	return modelpkg.Static(s.State(ch.Get(lx, p.Y, lz)))
}

// SetCell writes c at p, replacing any placeholder. Out-of-bounds writes are dropped.
func (s *ChunkStore) SetCell(p modelpkg.Vec3i, c modelpkg.Cell) bool {
	if !s.InBounds(p) {
		return false
	}
	k, lx, lz := split(p)
	ch := s.Chunks[k]
	if ch == nil {
		if c.IsEmpty() {
			return true
		}
		ch = newChunk(k.CX, k.CZ, s.Height)
		s.Chunks[k] = ch
	}
	if c.Moving != nil {
		ch.Set(lx, p.Y, lz, 0)
		ch.setMoving(lx, p.Y, lz, c.Moving)
		return true
	}
	ch.setMoving(lx, p.Y, lz, nil)
	ch.Set(lx, p.Y, lz, s.StateID(c.State))
	return true
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

// MovingAt lists every placeholder position in deterministic order.
func (s *ChunkStore) MovingAt() []modelpkg.Vec3i {
	var out []modelpkg.Vec3i
	for _, k := range s.LoadedChunkKeys() {
		ch := s.Chunks[k]
		for i := range ch.Moving {
			x, y, z := ch.LocalPos(i)
			out = append(out, modelpkg.Vec3i{X: k.CX*ChunkSize + x, Y: y, Z: k.CZ*ChunkSize + z})
		}
	}
	sort.Slice(out, func(i, j int) bool { return modelpkg.LessVec3i(out[i], out[j]) })
	return out
}

// RestorePalette replaces the palette (snapshot import). Entry 0 must be air.
func (s *ChunkStore) RestorePalette(states []modelpkg.BlockState) error {
	if len(states) == 0 || states[0] != modelpkg.Air {
		return fmt.Errorf("palette entry 0 must be AIR")
	}
	s.palette = make([]modelpkg.BlockState, 0, len(states))
	s.paletteIndex = make(map[modelpkg.BlockState]uint16, len(states))
	for _, st := range states {
		if _, dup := s.paletteIndex[st]; dup {
			return fmt.Errorf("duplicate palette entry %s", st)
		}
		s.paletteIndex[st] = uint16(len(s.palette))
		s.palette = append(s.palette, st)
	}
	return nil
}


// RestoreChunk installs a chunk's block ids verbatim (snapshot import).
func (s *ChunkStore) RestoreChunk(cx, cz int, blocks []uint16) {
	ch := newChunk(cx, cz, s.Height)
	copy(ch.Blocks, blocks)
	s.Chunks[ChunkKey{CX: cx, CZ: cz}] = ch
}

package store

import (
	"crypto/sha256"
	"encoding/binary"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

const ChunkSize = 16

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk is a 16x16 column of the full world height. Blocks hold palette ids; cells that
// are animating keep id 0 (air) in Blocks and their placeholder in Moving.
type Chunk struct {
	CX, CZ int
	Height int
	Blocks []uint16 // len = 16*16*Height, x fastest, then z, then y
	Moving map[int]*modelpkg.MovingPlaceholder

	dirty bool
	hash  [32]byte
}

func newChunk(cx, cz, height int) *Chunk {
	return &Chunk{
		CX:     cx,
		CZ:     cz,
		Height: height,
		Blocks: make([]uint16, ChunkSize*ChunkSize*height),
		dirty:  true,
	}
}

func (c *Chunk) index(x, y, z int) int {
	return x + z*ChunkSize + y*ChunkSize*ChunkSize
}

// LocalPos inverts index.
func (c *Chunk) LocalPos(i int) (x, y, z int) {
	x = i % ChunkSize
	z = (i / ChunkSize) % ChunkSize
	y = i / (ChunkSize * ChunkSize)
	return x, y, z
}

func (c *Chunk) Get(x, y, z int) uint16 {
	return c.Blocks[c.index(x, y, z)]
}

func (c *Chunk) Set(x, y, z int, b uint16) {
	i := c.index(x, y, z)
	if c.Blocks[i] == b {
		return
	}
	c.Blocks[i] = b
	c.dirty = true
}

func (c *Chunk) moving(x, y, z int) *modelpkg.MovingPlaceholder {
	if c.Moving == nil {
		return nil
	}
	return c.Moving[c.index(x, y, z)]
}

func (c *Chunk) setMoving(x, y, z int, m *modelpkg.MovingPlaceholder) {
	i := c.index(x, y, z)
	if m == nil {
		if c.Moving != nil {
			if _, ok := c.Moving[i]; ok {
				delete(c.Moving, i)
				c.dirty = true
			}
		}
		return
	}
	if c.Moving == nil {
		c.Moving = map[int]*modelpkg.MovingPlaceholder{}
	}
	c.Moving[i] = m
	c.dirty = true
}

// Digest hashes block ids. Placeholders are hashed by the world digest since their
// progress changes every tick.
func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

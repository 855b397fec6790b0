package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
	"voxelmech.ai/internal/sim/world/logic/blockevents"
	storepkg "voxelmech.ai/internal/sim/world/terrain/store"
)

type ChunkDigestFn func(k storepkg.ChunkKey) [32]byte

// MovingEntry is a placeholder at Pos, listed in installation order.
type MovingEntry struct {
	Pos modelpkg.Vec3i
	P   *modelpkg.MovingPlaceholder
}

type ScheduledEntry struct {
	Pos     modelpkg.Vec3i
	Block   string
	DueTick uint64
}

type StateInput struct {
	NowTick uint64
	Seed    int64

	Palette     []modelpkg.BlockState
	ChunkKeys   []storepkg.ChunkKey
	ChunkDigest ChunkDigestFn

	Moving      []MovingEntry
	BlockEvents []blockevents.Event
	Scheduled   []ScheduledEntry
	Drops       []*modelpkg.ItemDrop // sorted by id
}

// StateDigest hashes the authoritative sim state. Equal inputs give equal digests on any
// platform; it is the value replay compares tick by tick.
func StateDigest(in StateInput) string {
	h := sha256.New()
	var tmp [8]byte

	writeU64(h, &tmp, in.NowTick)
	writeU64(h, &tmp, uint64(in.Seed))

	writeU64(h, &tmp, uint64(len(in.Palette)))
	for _, s := range in.Palette {
		writeString(h, &tmp, s.String())
	}

	writeU64(h, &tmp, uint64(len(in.ChunkKeys)))
	for _, k := range in.ChunkKeys {
		writeI64(h, &tmp, int64(k.CX))
		writeI64(h, &tmp, int64(k.CZ))
		if in.ChunkDigest != nil {
			d := in.ChunkDigest(k)
			h.Write(d[:])
		}
	}

	writeU64(h, &tmp, uint64(len(in.Moving)))
	for _, m := range in.Moving {
		writeVec(h, &tmp, m.Pos)
		writeString(h, &tmp, m.P.State.String())
		h.Write([]byte{byte(m.P.Facing), boolByte(m.P.Extending), boolByte(m.P.Head)})
		writeU64(h, &tmp, math.Float64bits(m.P.Progress))
		writeU64(h, &tmp, math.Float64bits(m.P.LastProgress))
		writeVec(h, &tmp, m.P.Source)
	}

	writeU64(h, &tmp, uint64(len(in.BlockEvents)))
	for _, e := range in.BlockEvents {
		writeVec(h, &tmp, e.Pos)
		writeString(h, &tmp, e.Block)
		writeI64(h, &tmp, int64(e.Code))
		writeI64(h, &tmp, int64(e.Param))
	}

	writeU64(h, &tmp, uint64(len(in.Scheduled)))
	for _, s := range in.Scheduled {
		writeVec(h, &tmp, s.Pos)
		writeString(h, &tmp, s.Block)
		writeU64(h, &tmp, s.DueTick)
	}

	writeU64(h, &tmp, uint64(len(in.Drops)))
	for _, d := range in.Drops {
		writeString(h, &tmp, d.DropID)
		writeVec(h, &tmp, d.Pos)
		writeString(h, &tmp, d.Item)
		writeI64(h, &tmp, int64(d.Count))
		writeU64(h, &tmp, d.ExpiresTick)
	}

	return hex.EncodeToString(h.Sum(nil))
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func writeU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func writeI64(h hashWriter, tmp *[8]byte, v int64) { writeU64(h, tmp, uint64(v)) }

func writeVec(h hashWriter, tmp *[8]byte, v modelpkg.Vec3i) {
	writeI64(h, tmp, int64(v.X))
	writeI64(h, tmp, int64(v.Y))
	writeI64(h, tmp, int64(v.Z))
}

func writeString(h hashWriter, tmp *[8]byte, s string) {
	writeU64(h, tmp, uint64(len(s)))
	h.Write([]byte(s))
}

package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed      int64 `json:"seed"`
	TickRate  int   `json:"tick_rate_hz"`
	Height    int   `json:"height"`
	BoundaryR int   `json:"boundary_r"`

	// Captured for deterministic replay/resume.
	PushLimit             int     `json:"push_limit"`
	PlaceholderStep       float64 `json:"placeholder_step"`
	MaxBlockEventsPerTick int     `json:"max_block_events_per_tick"`
	ButtonPressTicks      int     `json:"button_press_ticks"`
	SnapshotEveryTicks    int     `json:"snapshot_every_ticks,omitempty"`

	BlocksDigest string `json:"blocks_digest,omitempty"`

	// Palette[0] is always "AIR"; entries are canonical block-state strings.
	Palette     []string       `json:"palette"`
	Chunks      []ChunkV1      `json:"chunks"`
	Moving      []MovingV1     `json:"moving,omitempty"`
	BlockEvents []BlockEventV1 `json:"block_events,omitempty"`
	Scheduled   []ScheduledV1  `json:"scheduled,omitempty"`
	Drops       []DropV1       `json:"drops,omitempty"`

	Counters CountersV1 `json:"counters"`
}

type CountersV1 struct {
	NextDrop   uint64 `json:"next_drop"`
	NextSeq    uint64 `json:"next_seq"`
	Moves      uint64 `json:"moves"`
	MoveFailed uint64 `json:"move_failed"`
}

type ChunkV1 struct {
	CX     int      `json:"cx"`
	CZ     int      `json:"cz"`
	Height int      `json:"height"`
	Blocks []uint16 `json:"blocks"`
}

type MovingV1 struct {
	Pos          [3]int  `json:"pos"`
	State        string  `json:"state"`
	Facing       int     `json:"facing"`
	Extending    bool    `json:"extending"`
	Progress     float64 `json:"progress"`
	LastProgress float64 `json:"last_progress"`
	Source       [3]int  `json:"source"`
	Head         bool    `json:"head,omitempty"`
	Seq          uint64  `json:"seq"`
}

type BlockEventV1 struct {
	Pos   [3]int `json:"pos"`
	Block string `json:"block"`
	Code  int    `json:"code"`
	Param int    `json:"param"`
}

type ScheduledV1 struct {
	Pos     [3]int `json:"pos"`
	Block   string `json:"block"`
	DueTick uint64 `json:"due_tick"`
	Seq     uint64 `json:"seq"`
}

type DropV1 struct {
	ID          string `json:"id"`
	Pos         [3]int `json:"pos"`
	Item        string `json:"item"`
	Count       int    `json:"count"`
	CreatedTick uint64 `json:"created_tick"`
	ExpiresTick uint64 `json:"expires_tick,omitempty"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Read header line (ignore it for now, gob also contains header).
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

package world

import (
	"encoding/json"
	"sort"

	"voxelmech.ai/internal/sim/encoding"
	modelpkg "voxelmech.ai/internal/sim/world/kernel/model"
)

// ObserverJoinRequest registers a read-only observer session. It first receives a HELLO
// frame with the palette and loaded chunks, then one TICK frame per tick.
//
// All observer state is maintained by the world loop goroutine.
type ObserverJoinRequest struct {
	SessionID string
	Out       chan []byte
	MaxChunks int
}

type observerClient struct {
	id  string
	out chan []byte
}

type HelloFrame struct {
	Type    string       `json:"type"`
	WorldID string       `json:"world_id"`
	Tick    uint64       `json:"tick"`
	Palette []string     `json:"palette"`
	Chunks  []ChunkFrame `json:"chunks"`
	Moving  []MovingView `json:"moving,omitempty"`
}

type ChunkFrame struct {
	CX     int    `json:"cx"`
	CZ     int    `json:"cz"`
	Height int    `json:"height"`
	Blocks string `json:"blocks_rle"` // palette ids, see encoding.EncodeRLE
}

type TickFrame struct {
	Type    string         `json:"type"`
	Tick    uint64         `json:"tick"`
	Digest  string         `json:"digest"`
	Changes []CellChange   `json:"changes,omitempty"`
	Moving  []MovingView   `json:"moving,omitempty"`
	Sounds  []SoundRecord  `json:"sounds,omitempty"`
	Moves   []MoveRecord   `json:"moves,omitempty"`
	Results []ActionResult `json:"results,omitempty"`
}

type CellChange struct {
	Pos   [3]int `json:"pos"`
	State string `json:"state"`
}

type MovingView struct {
	Pos       [3]int     `json:"pos"`
	State     string     `json:"state"`
	Facing    string     `json:"facing"`
	Extending bool       `json:"extending"`
	Progress  float64    `json:"progress"`
	Offset    [3]float64 `json:"offset"`
	Head      bool       `json:"head,omitempty"`
}

func movingView(pos Vec3i, m *MovingPlaceholder) MovingView {
	return MovingView{
		Pos:       pos.ToArray(),
		State:     m.State.String(),
		Facing:    m.Facing.String(),
		Extending: m.Extending,
		Progress:  m.Progress,
		Offset:    m.Offset(1),
		Head:      m.Head,
	}
}

func (w *World) movingViews() []MovingView {
	var out []MovingView
	for _, p := range w.movingOrder() {
		if c := w.chunks.Cell(p); c.IsAnimating() {
			out = append(out, movingView(p, c.Moving))
		}
	}
	return out
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.Out == nil {
		return
	}
	w.observers[req.SessionID] = &observerClient{id: req.SessionID, out: req.Out}

	maxChunks := req.MaxChunks
	if maxChunks <= 0 {
		maxChunks = 256
	}
	hello := HelloFrame{
		Type:    "HELLO",
		WorldID: w.cfg.ID,
		Tick:    w.tick.Load(),
		Moving:  w.movingViews(),
	}
	for _, st := range w.chunks.Palette() {
		hello.Palette = append(hello.Palette, st.String())
	}
	for i, k := range w.chunks.LoadedChunkKeys() {
		if i >= maxChunks {
			break
		}
		ch := w.chunks.Chunks[k]
		hello.Chunks = append(hello.Chunks, ChunkFrame{
			CX:     k.CX,
			CZ:     k.CZ,
			Height: ch.Height,
			Blocks: encoding.EncodeRLE(ch.Blocks),
		})
	}
	b, err := json.Marshal(hello)
	if err != nil {
		w.logger.Printf("observer hello: %v", err)
		return
	}
	sendLatest(req.Out, b)
}

func (w *World) handleObserverLeave(id string) {
	delete(w.observers, id)
}

func (w *World) publishObservers(nowTick uint64, entry TickLogEntry) {
	if len(w.observers) == 0 {
		return
	}
	frame := TickFrame{
		Type:    "TICK",
		Tick:    nowTick,
		Digest:  entry.Digest,
		Moving:  w.movingViews(),
		Sounds:  append([]SoundRecord(nil), w.tickSounds...),
		Moves:   entry.Moves,
		Results: entry.Results,
	}
	changed := make([]Vec3i, 0, len(w.tickChanged))
	for p := range w.tickChanged {
		changed = append(changed, p)
	}
	sort.Slice(changed, func(i, j int) bool { return modelpkg.LessVec3i(changed[i], changed[j]) })
	for _, p := range changed {
		frame.Changes = append(frame.Changes, CellChange{Pos: p.ToArray(), State: w.GetBlockState(p).String()})
	}
	b, err := json.Marshal(frame)
	if err != nil {
		w.logger.Printf("observer tick: %v", err)
		return
	}
	ids := make([]string, 0, len(w.observers))
	for id := range w.observers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		sendLatest(w.observers[id].out, b)
	}
}

// sendLatest never blocks the world loop; a full channel loses its oldest frame.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
